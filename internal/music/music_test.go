package music

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale_RawNotes(t *testing.T) {
	testCases := []struct {
		id    string
		name  string
		notes string
	}{
		{"Chromatic", "Chromatic", "C,C#,D,D#,E,F,F#,G,G#,A,A#,B,C"},
		{"Major", "Major", "C,D,E,F,G,A,B,C"},
		{"NaturalMinor", "Natural Minor", "C,D,D#,F,G,G#,A#,C"},
		{"HarmonicMinor", "Harmonic Minor", "C,D,D#,F,G,G#,B,C"},
		{"Locrian", "Locrian", "C,C#,D#,F,F#,G#,A#,C"},
		{"MinorBlues", "minor Blues", "C,D#,F,F#,G,A#,C"},
		{"CombinationDiminish", "Combination Diminish", "C,C#,D#,E,F#,G,A,A#,C"},
		{"JapaneseMiyakobushi", "Japanese Miyakobushi", "C,C#,F,G,G#,C"},
		{"FifthInterval", "5th Interval", "C,G,C"},
		{"OctaveInterval", "Octave Interval", "C,C"},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			s, ok := LookupScale(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.name, s.Name())
			assert.Equal(t, tc.notes, strings.Join(s.RawNotes(), ","))
		})
	}
}

func TestScale_NotesStartAndEndOnKey(t *testing.T) {
	assert.Len(t, Scales(), 34)

	for _, key := range chromatic {
		for _, s := range Scales() {
			notes := s.Notes(key, 3, 2)
			require.NotEmpty(t, notes)
			assert.Equal(t, key+"3", notes[0], s.ID())
			assert.Equal(t, key+"5", notes[len(notes)-1], s.ID())
		}
	}
}

func TestScale_Notes(t *testing.T) {
	assert.Equal(t,
		[]string{"A3", "B3", "C4", "D4", "E4", "F4", "G4", "A4"},
		NaturalMinor.Notes("a", 3, 1),
	)
	assert.Equal(t,
		[]string{"D4", "E4", "F#4", "G4", "A4", "B4", "C#5", "D5"},
		Major.Notes("D", 4, 0),
	)
	// no note starts with "H"
	assert.Equal(t, "B3", Chromatic.Notes("H", 3, 1)[0])
}

func TestChord(t *testing.T) {
	testCases := []struct {
		expected string
		typ      string
		root     string
	}{
		{"C3", "1", "C3"},
		{"C3,G3", "5", "C3"},
		{"C3,D#3,F#3", "diminished", "C3"},
		{"C3,D#3,F#3", "i", "C3"},
		{"F3,G#3,C4", "m", "F3"},
		{"C3,E3,G3", "", "C3"},
		{"C3,E3,G3", "major", "C3"},
		{"C3,F3,G#3", "a", "C3"},
		{"A3,C4,E4,G4", "m7", "A3"},
		{"C3,E3,G3,A#3", "dom7", "C3"},
		{"C3,E3,G3,B3", "maj7", "C3"},
		{"C3,D#3,G3,A3,D4", "m6,9", "C3"},
		{"G#3,B3,D#4,F5", "madd13", "G#3"},
		{"D3,F#3,A3,C#4,E4,G4", "maj11", "D3"},
		{"C3", "unknown", "C3"},
	}

	for _, tc := range testCases {
		t.Run(tc.typ+"/"+tc.root, func(t *testing.T) {
			assert.Equal(t, tc.expected, strings.Join(Chord(tc.root, tc.typ), ","))
		})
	}
}

func TestChordTypes_AllResolve(t *testing.T) {
	types := ChordTypes()
	assert.Len(t, types, len(chordStructures))
	for _, typ := range types {
		assert.NotEmpty(t, Chord("C3", typ), typ)
	}
}

func TestChord_InvalidRoot(t *testing.T) {
	assert.Empty(t, Chord("3", "M"))
	assert.Empty(t, MajorDiatonicChords(""))
}

func TestDiatonicChords(t *testing.T) {
	assert.Equal(t, [][]string{
		{"C4", "E4", "G4", "B4"},
		{"D4", "F4", "A4", "C5"},
		{"E4", "G4", "B4", "D5"},
		{"F4", "A4", "C5", "E5"},
		{"G4", "B4", "D5", "F5"},
		{"A4", "C5", "E5", "G5"},
		{"B4", "D5", "F5", "A5"},
	}, MajorDiatonicChords("C4"))

	assert.Equal(t, [][]string{
		{"A3", "C4", "E4", "G4"},
		{"B3", "D4", "F4", "A4"},
		{"C4", "E4", "G4", "B4"},
		{"D4", "F4", "A4", "C5"},
		{"E4", "G4", "B4", "D5"},
		{"F4", "A4", "C5", "E5"},
		{"G4", "B4", "D5", "F5"},
	}, NaturalMinorDiatonicChords("A3"))

	assert.Equal(t, [][]string{
		{"A3", "C4", "E4", "G#4"},
		{"B3", "D4", "F4", "A4"},
		{"C4", "E4", "G#4", "B4"},
		{"D4", "F4", "A4", "C5"},
		{"E4", "G#4", "B4", "D5"},
		{"F4", "A4", "C5", "E5"},
		{"G#4", "B4", "D5", "F5"},
	}, HarmonicMinorDiatonicChords("A3"))

	assert.Equal(t, [][]string{
		{"A3", "C4", "E4", "G#4"},
		{"B3", "D4", "F#4", "A4"},
		{"C4", "E4", "G#4", "B4"},
		{"D4", "F#4", "A4", "C5"},
		{"E4", "G#4", "B4", "D5"},
		{"F#4", "A4", "C5", "E5"},
		{"G#4", "B4", "D5", "F#5"},
	}, MelodicMinorDiatonicChords("A3"))
}

func TestParseNote(t *testing.T) {
	n, ok := ParseNote("C#4")
	require.True(t, ok)
	assert.Equal(t, Note{Name: "C#", Octave: 4}, n)

	n, ok = ParseNote("A")
	require.True(t, ok)
	assert.Equal(t, Note{Name: "A", Octave: 0}, n)

	_, ok = ParseNote("4C")
	assert.False(t, ok)
}
