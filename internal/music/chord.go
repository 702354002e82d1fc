package music

import (
	"regexp"
	"slices"
	"strconv"
)

// chordTypes lists structure keys in the order scripts see them: numeric
// names first, then the rest as declared.
var chordTypes = []string{
	"1", "5", "6", "7", "9", "11", "13",
	"M", "sus2", "dim", "m", "m+5", "sus4", "aug", "madd2", "add2", "7sus2",
	"madd4", "dim7", "m7-5", "m6", "madd9", "madd11", "madd13", "m7", "mM7",
	"m7+5", "add4", "7-5", "M7", "add9", "add11", "add13", "7+5", "M7+5",
	"7sus4", "m6/9", "m7-9", "m9", "m7+9", "m11", "m11+", "m13", "m7+5-9",
	"m9+5", "6/9", "7-9", "7-10", "11+", "maj9", "7+5-9", "9+5", "9sus4",
	"maj11",
}

// chordStructures are semitone offsets from the root.
var chordStructures = map[string][]int{
	"M":      {0, 4, 7},
	"1":      {0},
	"5":      {0, 7},
	"sus2":   {0, 2, 7},
	"dim":    {0, 3, 6},
	"m":      {0, 3, 7},
	"m+5":    {0, 3, 8},
	"sus4":   {0, 5, 7},
	"aug":    {0, 5, 8},
	"madd2":  {0, 2, 3, 7},
	"add2":   {0, 2, 4, 7},
	"7sus2":  {0, 2, 7, 10},
	"madd4":  {0, 3, 5, 7},
	"dim7":   {0, 3, 6, 9},
	"m7-5":   {0, 3, 6, 10},
	"m6":     {0, 3, 7, 9},
	"madd9":  {0, 3, 7, 14},
	"madd11": {0, 3, 7, 17},
	"madd13": {0, 3, 7, 21},
	"m7":     {0, 3, 7, 10},
	"mM7":    {0, 3, 7, 11},
	"m7+5":   {0, 3, 8, 10},
	"add4":   {0, 4, 5, 7},
	"7-5":    {0, 4, 6, 10},
	"6":      {0, 4, 7, 9},
	"7":      {0, 4, 7, 10},
	"M7":     {0, 4, 7, 11},
	"add9":   {0, 4, 7, 14},
	"add11":  {0, 4, 7, 17},
	"add13":  {0, 4, 7, 21},
	"7+5":    {0, 4, 8, 10},
	"M7+5":   {0, 4, 8, 11},
	"7sus4":  {0, 5, 7, 10},
	"m6/9":   {0, 3, 7, 9, 14},
	"m7-9":   {0, 3, 7, 10, 13},
	"m9":     {0, 3, 7, 10, 14},
	"m7+9":   {0, 3, 7, 10, 15},
	"m11":    {0, 3, 7, 10, 17},
	"m11+":   {0, 3, 7, 10, 18},
	"m13":    {0, 3, 7, 10, 21},
	"m7+5-9": {0, 3, 8, 10, 13},
	"m9+5":   {0, 3, 8, 10, 14},
	"6/9":    {0, 4, 7, 9, 14},
	"7-9":    {0, 4, 7, 10, 13},
	"9":      {0, 4, 7, 10, 14},
	"7-10":   {0, 4, 7, 10, 15},
	"11":     {0, 4, 7, 10, 17},
	"11+":    {0, 4, 7, 10, 18},
	"13":     {0, 4, 7, 10, 21},
	"maj9":   {0, 4, 7, 11, 14},
	"7+5-9":  {0, 4, 8, 10, 13},
	"9+5":    {0, 4, 8, 10, 14},
	"9sus4":  {0, 5, 7, 10, 14},
	"maj11":  {0, 4, 7, 11, 14, 17},
}

var chordAliases = map[string]string{
	"minor":       "m",
	"major":       "M",
	"diminished":  "dim",
	"i":           "dim",
	"a":           "aug",
	"diminished7": "dim7",
	"i7":          "dim7",
	"dom7":        "7",
	"maj7":        "M7",
	"major7":      "M7",
	"m6,9":        "m6/9",
	"6,9":         "6/9",
	"minor7":      "m7",
}

// ChordTypes returns every chord type name.
func ChordTypes() []string {
	return slices.Clone(chordTypes)
}

// ResolveChordType maps an alias to its structure name. Unknown names fall
// back to a major triad when empty and to the bare root otherwise.
func ResolveChordType(typ string) string {
	if _, ok := chordStructures[typ]; ok {
		return typ
	}
	if resolved, ok := chordAliases[typ]; ok {
		return resolved
	}
	if typ == "" {
		return "M"
	}
	return "1"
}

// Chord returns the notes of the chord built on root, e.g. Chord("C3", "m7").
// A root that is not a note literal yields no notes.
func Chord(root, typ string) []string {
	note, ok := ParseNote(root)
	if !ok {
		return []string{}
	}
	notes := Chromatic.Notes(note.Name, note.Octave, 2)
	structure := chordStructures[ResolveChordType(typ)]

	out := make([]string, len(structure))
	for i, offset := range structure {
		out[i] = notes[offset]
	}
	return out
}

var (
	majorDiatonic         = []string{"M7", "m7", "m7", "M7", "7", "m7", "m7-5"}
	naturalMinorDiatonic  = []string{"m7", "m7-5", "M7", "m7", "m7", "M7", "7"}
	harmonicMinorDiatonic = []string{"mM7", "m7-5", "M7+5", "m7", "7", "M7", "dim7"}
	melodicMinorDiatonic  = []string{"mM7", "m7", "M7+5", "7", "7", "m7-5", "m7-5"}
)

// MajorDiatonicChords returns the seven seventh chords of the major key on root.
func MajorDiatonicChords(root string) [][]string {
	return diatonicChords(majorDiatonic, Ionian, root)
}

func NaturalMinorDiatonicChords(root string) [][]string {
	return diatonicChords(naturalMinorDiatonic, Aeorian, root)
}

func HarmonicMinorDiatonicChords(root string) [][]string {
	return diatonicChords(harmonicMinorDiatonic, HarmonicMinor, root)
}

func MelodicMinorDiatonicChords(root string) [][]string {
	return diatonicChords(melodicMinorDiatonic, MelodicMinorUp, root)
}

func diatonicChords(types []string, scale *Scale, root string) [][]string {
	note, ok := ParseNote(root)
	if !ok {
		return [][]string{}
	}
	notes := scale.Notes(note.Name, note.Octave, 2)
	out := make([][]string, len(types))
	for i, typ := range types {
		out[i] = Chord(notes[i], typ)
	}
	return out
}

// Note is a parsed note literal.
type Note struct {
	Name   string
	Octave int
}

var noteLiteral = regexp.MustCompile(`^(\D+)(\d*)$`)

// ParseNote splits "C#4" into name and octave. A missing octave is 0.
func ParseNote(s string) (Note, bool) {
	m := noteLiteral.FindStringSubmatch(s)
	if m == nil {
		return Note{}, false
	}
	octave := 0
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Note{}, false
		}
		octave = n
	}
	return Note{Name: m[1], Octave: octave}, true
}
