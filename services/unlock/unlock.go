package unlock

import (
	"errors"
	"fmt"
	"sort"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"gorm.io/gorm"
)

// Service decides, per student, which modules of a course or batch are
// visible, locked and completed. It only reads; nothing here mutates state.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LockState is the evaluated state of one module for one student
type LockState struct {
	Locked    bool `json:"locked"`
	Completed bool `json:"completed"`
}

// LockStates evaluates template modules of a course in order-index order.
// Module 1 is always unlocked. For unenrolled students nothing is locked;
// the caller restricts visibility to free modules instead. The assessment
// and submission lookups that graded_unlock needs happen lazily, one
// module boundary at a time.
func (s *Service) LockStates(studentID uint, course *courseModels.Course, modules []courseModels.Module, enrollment *courseModels.Enrollment) (map[uint]LockState, error) {
	states := make(map[uint]LockState, len(modules))

	if enrollment == nil {
		for _, m := range modules {
			states[m.ID] = LockState{}
		}
		return states, nil
	}

	completed, err := s.completedSet(enrollment.ID, courseModels.ModRefTemplate)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedSet(enrollment.ID, courseModels.ModRefTemplate)
	if err != nil {
		return nil, err
	}

	ordered := make([]courseModels.Module, len(modules))
	copy(ordered, modules)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	for i, module := range ordered {
		state := LockState{Completed: completed[module.ID]}

		if blocked[module.ID] {
			// Payment gating overrides every unlock mode
			state.Locked = true
			states[module.ID] = state
			continue
		}

		if module.OrderIndex == 1 || i == 0 {
			states[module.ID] = state
			continue
		}

		previous := ordered[i-1]

		switch course.UnlockMode {
		case courseModels.UnlockFreeFlow:
			// never locked

		case courseModels.UnlockSequential:
			if !completed[previous.ID] {
				state.Locked = true
			}

		case courseModels.UnlockGradedUnlock:
			passed, err := s.passedModuleAssessment(studentID, previous.ID)
			if err != nil {
				return nil, err
			}
			if !passed {
				state.Locked = true
			}
		}

		states[module.ID] = state
	}

	return states, nil
}

// BatchLockStates is the live-course counterpart, evaluated over batch
// modules in week order. Completed/blocked sets are keyed by batch module.
func (s *Service) BatchLockStates(studentID uint, course *courseModels.Course, batchModules []courseModels.BatchModule, enrollment *courseModels.Enrollment) (map[uint]LockState, error) {
	states := make(map[uint]LockState, len(batchModules))

	if enrollment == nil {
		for _, m := range batchModules {
			states[m.ID] = LockState{}
		}
		return states, nil
	}

	completed, err := s.completedSet(enrollment.ID, courseModels.ModRefBatch)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedSet(enrollment.ID, courseModels.ModRefBatch)
	if err != nil {
		return nil, err
	}

	ordered := make([]courseModels.BatchModule, len(batchModules))
	copy(ordered, batchModules)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].WeekNumber < ordered[j].WeekNumber
	})

	for i, module := range ordered {
		state := LockState{Completed: completed[module.ID]}

		if blocked[module.ID] {
			state.Locked = true
			states[module.ID] = state
			continue
		}

		if i == 0 {
			states[module.ID] = state
			continue
		}

		previous := ordered[i-1]

		switch course.UnlockMode {
		case courseModels.UnlockFreeFlow:
			// never locked

		case courseModels.UnlockSequential:
			if !completed[previous.ID] {
				state.Locked = true
			}

		case courseModels.UnlockGradedUnlock:
			passed, err := s.passedBatchModuleAssessment(studentID, previous.ID)
			if err != nil {
				return nil, err
			}
			if !passed {
				state.Locked = true
			}
		}

		states[module.ID] = state
	}

	return states, nil
}

// ValidateGradedUnlockAuthoring rejects submitting a graded_unlock course
// for review when any module after the first has no assessment in its
// preceding module. Failing here beats a runtime dead-end no student can
// progress past.
func (s *Service) ValidateGradedUnlockAuthoring(courseID uint) error {
	var modules []courseModels.Module
	err := s.db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules).Error
	if err != nil {
		return err
	}

	for i, module := range modules {
		if module.OrderIndex <= 1 || i == 0 {
			continue
		}
		previous := modules[i-1]

		var count int64
		err := s.db.Model(&courseModels.Assessment{}).
			Where("module_id = ? AND is_deleted = ?", previous.ID, false).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return apperr.InvalidStatef(fmt.Sprintf(
				"module %q cannot unlock because previous module has no assessment", module.Title))
		}
	}

	return nil
}

// passedModuleAssessment implements the graded_unlock boundary rule for a
// template module: unlocked when the module has no assessment at all, or
// when the student holds a passed submission against it.
func (s *Service) passedModuleAssessment(studentID, moduleID uint) (bool, error) {
	var assessment courseModels.Assessment
	err := s.db.Where("module_id = ? AND is_deleted = ?", moduleID, false).First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to grade, auto-unlock
			return true, nil
		}
		return false, err
	}

	return s.hasPassedSubmission(studentID, assessment.ID)
}

func (s *Service) passedBatchModuleAssessment(studentID, batchModuleID uint) (bool, error) {
	var assessment courseModels.Assessment
	err := s.db.Where("batch_module_id = ? AND is_deleted = ?", batchModuleID, false).First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}

	return s.hasPassedSubmission(studentID, assessment.ID)
}

func (s *Service) hasPassedSubmission(studentID, assessmentID uint) (bool, error) {
	var count int64
	err := s.db.Model(&courseModels.Submission{}).
		Where("student_id = ? AND assessment_id = ? AND passed = ?", studentID, assessmentID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) completedSet(enrollmentID uint, moduleType string) (map[uint]bool, error) {
	var rows []courseModels.CompletedModule
	err := s.db.Where("enrollment_id = ? AND module_type = ?", enrollmentID, moduleType).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(rows))
	for _, row := range rows {
		set[row.ModuleID] = true
	}
	return set, nil
}

func (s *Service) blockedSet(enrollmentID uint, moduleType string) (map[uint]bool, error) {
	var rows []courseModels.BlockedModule
	err := s.db.Where("enrollment_id = ? AND module_type = ?", enrollmentID, moduleType).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(rows))
	for _, row := range rows {
		set[row.ModuleID] = true
	}
	return set, nil
}
