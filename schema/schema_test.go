package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkItemCheckoutRevision(t *testing.T) {
	tests := []struct {
		name string
		item WorkItem
		want string
	}{
		{"plain", WorkItem{Revision: "1.4"}, "1.4"},
		{"plain keeps separator", WorkItem{Revision: "1.4|2024"}, "1.4|2024"},
		{"composed", WorkItem{Revision: "1.4|2024-01-01 10:00:00", Composed: true}, "1.4"},
		{"composed without separator", WorkItem{Revision: "1.4", Composed: true}, "1.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.CheckoutRevision())
		})
	}
}

func TestWorkItemKey(t *testing.T) {
	item := WorkItem{FileID: 7, CommitID: 3}
	assert.Equal(t, MeasuredKey{FileID: 7, CommitID: 3}, item.Key())
}

func TestMeasuresApply(t *testing.T) {
	var m Measures
	m.ApplyComments(CommentCounts{NComment: Ptr(2), LComment: Ptr(5)})
	m.ApplyMcCabe(McCabeStats{Sum: Ptr(14), Min: Ptr(1), Max: Ptr(7), Mean: Ptr(3), Median: Ptr(3)})
	m.ApplyHalstead(Halstead{Length: Ptr(40), Level: Ptr(0.5)})

	assert.Equal(t, 2, *m.NComment)
	assert.Equal(t, 5, *m.LComment)
	assert.Nil(t, m.LBlank, "unset counts stay unset")
	assert.Equal(t, 14, *m.McCabeSum)
	assert.Equal(t, 7, *m.McCabeMax)
	assert.Equal(t, 40, *m.HalsteadLength)
	assert.InDelta(t, 0.5, *m.HalsteadLevel, 1e-9)
	assert.Nil(t, m.HalsteadVol)
	assert.Nil(t, m.SLOC)
}

func TestVCSTypeTraits(t *testing.T) {
	assert.True(t, SVN.IsHierarchical())
	assert.False(t, Git.IsHierarchical())
	assert.False(t, CVS.IsHierarchical())

	assert.True(t, SVN.TracksPathHistory())
	assert.True(t, Git.TracksPathHistory())
	assert.False(t, CVS.TracksPathHistory())
}
