package diffengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// fakeReferences is a minimal SymbolReferences stub for exercising
// MarkSafeSymbolsFromDiff without pulling in pkg/cache.
type fakeReferences struct {
	invalid          map[issue.SymbolRef]struct{}
	partiallyInvalid map[strid.ID]struct{}
	ok               bool
	removed          map[issue.SymbolRef]struct{}
}

func (f *fakeReferences) GetInvalidSymbols(CodebaseDiff) (map[issue.SymbolRef]struct{}, map[strid.ID]struct{}, bool) {
	return f.invalid, f.partiallyInvalid, f.ok
}

func (f *fakeReferences) RemoveReferencesFromInvalidSymbols(invalid map[issue.SymbolRef]struct{}) {
	f.removed = invalid
}

func TestFilterIssuesDropsInvalidSymbolAndSameFileSymbol(t *testing.T) {
	in := strid.New()
	file := hpos.FilePath("a.hack")
	fileID := in.Intern(string(file))
	bad := in.Intern("BadSymbol")
	good := in.Intern("GoodSymbol")

	issues := []issue.Issue{
		{Message: "dropped: invalidated", Symbol: issue.SymbolRef{Symbol: bad}},
		{Message: "dropped: symbol is the file itself", Symbol: issue.SymbolRef{Symbol: fileID}},
		{Message: "kept", Symbol: issue.SymbolRef{Symbol: good}},
	}
	invalid := map[issue.SymbolRef]struct{}{{Symbol: bad}: {}}

	kept := filterIssues(in, issues, invalid, file)

	require.Len(t, kept, 1)
	assert.Equal(t, "kept", kept[0].Message)
}

func TestUpdateIssuesFromDiffDropsDeletedAndShiftsSurvivors(t *testing.T) {
	in := strid.New()
	file := hpos.FilePath("a.hack")
	good := in.Intern("GoodSymbol")

	existing := map[hpos.FilePath][]issue.Issue{
		file: {
			{Message: "inside a deleted range", Symbol: issue.SymbolRef{Symbol: good}, Pos: hpos.HPos{File: file, StartOffset: 5}},
			{Message: "shifted", Symbol: issue.SymbolRef{Symbol: good}, Pos: hpos.HPos{File: file, StartOffset: 20}},
		},
	}
	diff := CodebaseDiff{
		DeletionRangesMap: map[hpos.FilePath][][2]uint32{file: {{0, 10}}},
		DiffMap:           map[hpos.FilePath][]OffsetShift{file: {{From: 15, To: 25, FileOffset: 3, LineOffset: 1}}},
	}

	updated := UpdateIssuesFromDiff(in, existing, diff, nil)

	require.Len(t, updated[file], 1)
	assert.Equal(t, "shifted", updated[file][0].Message)
	assert.Equal(t, uint32(23), updated[file][0].Pos.StartOffset)
}

func TestMarkSafeSymbolsFromDiffFullRescanWithNoPriorState(t *testing.T) {
	in := strid.New()
	files := []string{"a.hack", "b.hack"}

	result, narrowed := MarkSafeSymbolsFromDiff(in, CodebaseDiff{}, nil, files, nil, nil)

	assert.Equal(t, CachedAnalysis{}, result)
	assert.Equal(t, files, narrowed)
}

func TestMarkSafeSymbolsFromDiffPartitionsSafeSymbolsAndMembers(t *testing.T) {
	in := strid.New()
	keepSymbol := in.Intern("KeepMe")
	keepMemberOwner := in.Intern("KeepMemberOwner")
	keepMember := in.Intern("keepMethod")

	refs := &fakeReferences{
		invalid:          map[issue.SymbolRef]struct{}{},
		partiallyInvalid: map[strid.ID]struct{}{},
		ok:               true,
	}
	previous := &PreviousAnalysisResult{SymbolReferences: refs, EmittedIssues: map[hpos.FilePath][]issue.Issue{}}

	diff := CodebaseDiff{Keep: []issue.SymbolRef{
		{Symbol: keepSymbol},
		{Symbol: keepMemberOwner, Member: keepMember},
	}}

	result, _ := MarkSafeSymbolsFromDiff(in, diff, nil, nil, previous, nil)

	_, safe := result.SafeSymbols[keepSymbol]
	assert.True(t, safe, "expected a bare kept symbol to land in SafeSymbols")

	_, safeMember := result.SafeSymbolMembers[issue.SymbolRef{Symbol: keepMemberOwner, Member: keepMember}]
	assert.True(t, safeMember, "expected a kept member to land in SafeSymbolMembers")

	require.NotNil(t, refs.removed)
}

func TestMarkSafeSymbolsFromDiffAbandonsOnUnboundedInvalidation(t *testing.T) {
	in := strid.New()
	refs := &fakeReferences{ok: false}
	previous := &PreviousAnalysisResult{SymbolReferences: refs}

	result, narrowed := MarkSafeSymbolsFromDiff(in, CodebaseDiff{}, nil, []string{"a.hack"}, previous, nil)

	assert.Equal(t, CachedAnalysis{}, result)
	assert.Equal(t, []string{"a.hack"}, narrowed)
}
