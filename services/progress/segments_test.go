package progress

import (
	"reflect"
	"testing"

	courseModels "lms/models/course"
)

func TestMergeSegments(t *testing.T) {
	tests := []struct {
		name string
		in   []courseModels.Segment
		want []courseModels.Segment
	}{
		{name: "empty", in: nil, want: []courseModels.Segment{}},
		{
			name: "single",
			in:   []courseModels.Segment{{0, 10}},
			want: []courseModels.Segment{{0, 10}},
		},
		{
			name: "overlapping pair",
			in:   []courseModels.Segment{{0, 10}, {5, 20}},
			want: []courseModels.Segment{{0, 20}},
		},
		{
			name: "touching endpoints collapse",
			in:   []courseModels.Segment{{0, 10}, {10, 15}},
			want: []courseModels.Segment{{0, 15}},
		},
		{
			name: "disjoint stay disjoint",
			in:   []courseModels.Segment{{0, 5}, {10, 15}},
			want: []courseModels.Segment{{0, 5}, {10, 15}},
		},
		{
			name: "unsorted input",
			in:   []courseModels.Segment{{30, 40}, {0, 5}, {3, 12}},
			want: []courseModels.Segment{{0, 12}, {30, 40}},
		},
		{
			name: "contained segment absorbed",
			in:   []courseModels.Segment{{0, 100}, {20, 30}},
			want: []courseModels.Segment{{0, 100}},
		},
		{
			name: "zero length absorbed",
			in:   []courseModels.Segment{{0, 10}, {5, 5}},
			want: []courseModels.Segment{{0, 10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSegments(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeSegments() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeSegmentsIdempotent(t *testing.T) {
	in := []courseModels.Segment{{0, 10}, {8, 20}, {25, 30}}
	once := MergeSegments(in)
	twice := MergeSegments(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second merge changed the list: %v -> %v", once, twice)
	}
}

func TestMergeSegmentsOrderIndependent(t *testing.T) {
	a := MergeSegments([]courseModels.Segment{{0, 5}, {4, 10}, {20, 25}})
	b := MergeSegments([]courseModels.Segment{{20, 25}, {4, 10}, {0, 5}})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("merge depends on input order: %v vs %v", a, b)
	}
}

func TestMergeSegmentsDoesNotMutateInput(t *testing.T) {
	in := []courseModels.Segment{{5, 10}, {0, 3}}
	MergeSegments(in)
	if in[0] != (courseModels.Segment{5, 10}) || in[1] != (courseModels.Segment{0, 3}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestTotalWatchTime(t *testing.T) {
	in := []courseModels.Segment{{0, 10}, {5, 20}, {30, 35}}
	if got := TotalWatchTime(in); got != 25 {
		t.Errorf("TotalWatchTime() = %v, want 25", got)
	}
}

func TestValidateSegment(t *testing.T) {
	if err := ValidateSegment(courseModels.Segment{0, 10}); err != nil {
		t.Errorf("valid segment rejected: %v", err)
	}
	if err := ValidateSegment(courseModels.Segment{-1, 10}); err == nil {
		t.Error("negative start accepted")
	}
	if err := ValidateSegment(courseModels.Segment{10, 5}); err == nil {
		t.Error("inverted segment accepted")
	}
}
