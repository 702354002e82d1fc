package feed

import (
	"log/slog"
	"strings"

	"github.com/nfrund/livetone/internal/script"
)

// FragmentPrefix marks fragments received from the feed.
const FragmentPrefix = "shared:"

// FragmentName returns the fragment name used for code shared under tag.
func FragmentName(tag string) string {
	return FragmentPrefix + tag
}

// IsShared reports whether name belongs to a received fragment.
func IsShared(name string) bool {
	return strings.HasPrefix(name, FragmentPrefix)
}

// Fragment converts received code into a read-only fragment.
func (m SharedCode) Fragment() script.Fragment {
	return script.Fragment{
		Name:           FragmentName(m.Tag),
		Source:         m.Code,
		AllowTransport: false,
	}
}

// ToRegistry stores every received message in r, replacing older code with
// the same tag. onChange is called with the fragment name when the stored
// code changed; it may be nil.
func ToRegistry(r *script.Registry, onChange func(name string)) ReceiveHandler {
	return func(msg SharedCode) {
		f := msg.Fragment()
		if !r.Set(f) {
			return
		}
		slog.Info("Received shared code", "fragment", f.Name, "from", msg.ID)
		if onChange != nil {
			onChange(f.Name)
		}
	}
}
