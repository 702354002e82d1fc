// Package music provides the scale and chord lookups exposed to scripts.
// Notes are written as name plus octave, e.g. "C#4".
package music

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// chromatic is one octave starting at C.
var chromatic = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Scale picks degrees out of the chromatic scale. A nil pick-up list keeps
// every note.
type Scale struct {
	id     string
	name   string
	pickUp []int
}

func newScale(id, name string, pickUp []int) *Scale {
	return &Scale{id: id, name: name, pickUp: pickUp}
}

// ID is the key the scale is published under, e.g. "NaturalMinor".
func (s *Scale) ID() string { return s.id }

// Name is the display name, e.g. "Natural Minor".
func (s *Scale) Name() string { return s.name }

// RawNotes returns the scale in C without octaves, closing on the octave.
func (s *Scale) RawNotes() []string {
	notes := append(slices.Clone(chromatic), chromatic[0])
	return s.pick(notes)
}

// Notes returns the scale transposed to key, starting at octave and spanning
// octaves octaves (at least one), closing on the key note. The octave number
// rolls over at every C after the first note. A key that matches no note
// name starts the scale on B.
func (s *Scale) Notes(key string, octave, octaves int) []string {
	keyPos := -1
	k := cases.Upper(language.Und).String(key)
	for i, note := range chromatic {
		if strings.HasPrefix(note, k) {
			keyPos = i
			break
		}
	}

	var rotated []string
	if keyPos < 0 {
		last := len(chromatic) - 1
		rotated = append([]string{chromatic[last]}, chromatic[:last]...)
	} else {
		rotated = append(slices.Clone(chromatic[keyPos:]), chromatic[:keyPos]...)
	}

	transposed := slices.Clone(rotated)
	for i := 1; i < octaves; i++ {
		transposed = append(transposed, rotated...)
	}
	transposed = append(transposed, transposed[0])

	notes := make([]string, len(transposed))
	o := octave
	for i, name := range transposed {
		if i > 0 && name == "C" {
			o++
		}
		notes[i] = name + strconv.Itoa(o)
	}
	return s.pick(notes)
}

func (s *Scale) pick(notes []string) []string {
	if s.pickUp == nil {
		return notes
	}
	out := make([]string, 0, len(notes))
	for i, n := range notes {
		if slices.Contains(s.pickUp, i%12) {
			out = append(out, n)
		}
	}
	return out
}

var (
	majorIndexes        = []int{0, 2, 4, 5, 7, 9, 11, 12}
	naturalMinorIndexes = []int{0, 2, 3, 5, 7, 8, 10, 12}
)

var (
	Chromatic      = newScale("Chromatic", "Chromatic", nil)
	Major          = newScale("Major", "Major", majorIndexes)
	NaturalMinor   = newScale("NaturalMinor", "Natural Minor", naturalMinorIndexes)
	HarmonicMinor  = newScale("HarmonicMinor", "Harmonic Minor", []int{0, 2, 3, 5, 7, 8, 11, 12})
	MelodicMinorUp = newScale("MelodicMinorUp", "Melodic Minor Up", []int{0, 2, 3, 5, 7, 9, 11, 12})
	Ionian         = newScale("Ionian", "Ionian", majorIndexes)
	Aeorian        = newScale("Aeorian", "Aeorian", naturalMinorIndexes)
)

// scales is every published scale in display order.
var scales = []*Scale{
	Chromatic,
	Major,
	NaturalMinor,
	HarmonicMinor,
	MelodicMinorUp,
	Ionian,
	newScale("Dorian", "Dorian", []int{0, 2, 3, 5, 7, 9, 10, 12}),
	newScale("Phrygian", "Phrygian", []int{0, 1, 3, 5, 7, 8, 10, 12}),
	newScale("Lydian", "Lydian", []int{0, 2, 4, 6, 7, 9, 11, 12}),
	newScale("Mixolydian", "Mixolydian", []int{0, 2, 4, 5, 7, 9, 10, 12}),
	Aeorian,
	newScale("Locrian", "Locrian", []int{0, 1, 3, 5, 6, 8, 10, 12}),
	newScale("MajorBlues", "Major Blues", []int{0, 3, 4, 7, 9, 10, 12}),
	newScale("MinorBlues", "minor Blues", []int{0, 3, 5, 6, 7, 10, 12}),
	newScale("Diminish", "Diminish", []int{0, 2, 3, 5, 6, 8, 9, 11, 12}),
	newScale("CombinationDiminish", "Combination Diminish", []int{0, 1, 3, 4, 6, 7, 9, 10, 12}),
	newScale("MajorPentatonic", "Major Pentatonic", []int{0, 2, 4, 7, 9, 12}),
	newScale("MinorPentatonic", "minor Pentatonic", []int{0, 3, 5, 7, 10, 12}),
	newScale("RagaBhairav", "Raga Bhairav", []int{0, 1, 4, 5, 7, 8, 11, 12}),
	newScale("RagaGamanasrama", "Raga Gamanasrama", []int{0, 1, 4, 6, 7, 9, 11, 12}),
	newScale("RagaTodi", "Raga Todi", []int{0, 1, 3, 6, 7, 8, 11, 12}),
	newScale("SpanishScale", "Spanish Scale", []int{0, 1, 3, 4, 5, 7, 8, 10, 12}),
	newScale("GypsyScale", "Gypsy Scale", []int{0, 2, 3, 6, 7, 8, 11, 12}),
	newScale("ArabianScale", "Arabian Scale", []int{0, 2, 4, 5, 6, 8, 10, 12}),
	newScale("EgyptianScale", "Egyptian Scale", []int{0, 2, 5, 7, 10, 12}),
	newScale("HawaiianScale", "Hawaiian Scale", []int{0, 2, 3, 7, 9, 12}),
	newScale("BaliIslandPelog", "Bali Island Pelog", []int{0, 1, 3, 7, 8, 12}),
	newScale("JapaneseMiyakobushi", "Japanese Miyakobushi", []int{0, 1, 5, 7, 8, 12}),
	newScale("RyukyuScale", "Ryukyu Scale", []int{0, 4, 5, 7, 11, 12}),
	newScale("Wholetone", "Wholetone", []int{0, 2, 4, 6, 8, 10, 12}),
	newScale("MinorThirdInterval", "minor 3rd Interval", []int{0, 3, 6, 9, 12}),
	newScale("ThirdInterval", "3rd Interval", []int{0, 4, 8, 12}),
	newScale("FourthInterval", "4th Interval", []int{0, 5, 10, 12}),
	newScale("FifthInterval", "5th Interval", []int{0, 7, 12}),
	newScale("OctaveInterval", "Octave Interval", []int{0, 12}),
}

// Scales returns every scale in display order.
func Scales() []*Scale {
	return slices.Clone(scales)
}

// LookupScale finds a scale by ID.
func LookupScale(id string) (*Scale, bool) {
	for _, s := range scales {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}
