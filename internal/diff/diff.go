// Package diff renders profile changes as text patches kept in the revision history.
package diff

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sidereusnuntius/donata/internal/domain"
)

var dmp *diffmatchpatch.DiffMatchPatch

func init() {
	dmp = diffmatchpatch.New()
}

func FindPatches(text1, text2 string) string {
	diffs := dmp.DiffMain(text1, text2, false)
	return dmp.PatchToText(dmp.PatchMake(diffs))
}

// Apply applies a patch produced by FindPatches to text. ok is false when a hunk did not apply.
func Apply(text, patch string) (result string, ok bool, err error) {
	patches, err := dmp.PatchFromText(patch)
	if err != nil {
		return "", false, err
	}
	result, applied := dmp.PatchApply(patches, text)
	ok = true
	for _, a := range applied {
		ok = ok && a
	}
	return result, ok, nil
}

// Render writes the profile as one "key: value" line per field, socials sorted by network.
// The FID and address are left out since they never change.
func Render(p domain.Profile) string {
	var sb strings.Builder
	sb.WriteString("name: " + p.Name + "\n")
	sb.WriteString("email: " + p.Email + "\n")

	networks := make([]string, 0, len(p.Socials))
	for n := range p.Socials {
		networks = append(networks, n)
	}
	sort.Strings(networks)
	for _, n := range networks {
		sb.WriteString(n + ": " + strconv.Quote(p.Socials[n]) + "\n")
	}
	return sb.String()
}

// ProfilePatch is the patch turning before into after. It is empty when nothing changed.
func ProfilePatch(before, after domain.Profile) string {
	return FindPatches(Render(before), Render(after))
}

var ErrPatch = errors.New("patch does not apply")

// Replay rebuilds every version of a profile from its patches, oldest first, starting from the
// rendering of a newly created profile. versions[i] is the text after patches[i].
func Replay(patches []string) (versions []string, err error) {
	text := Render(domain.Profile{})
	versions = make([]string, 0, len(patches))
	for i, patch := range patches {
		next, ok, err := Apply(text, patch)
		if err != nil {
			return versions, fmt.Errorf("patch %d: %w", i, err)
		}
		if !ok {
			return versions, fmt.Errorf("patch %d: %w", i, ErrPatch)
		}
		text = next
		versions = append(versions, text)
	}
	return versions, nil
}

// Changed lists, sorted, the keys whose line differs between two renderings.
func Changed(before, after string) []string {
	b, a := fields(before), fields(after)
	var keys []string
	for k, v := range a {
		if old, ok := b[k]; !ok || old != v {
			keys = append(keys, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func fields(text string) map[string]string {
	m := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		if k, v, ok := strings.Cut(line, ": "); ok {
			m[k] = v
		}
	}
	return m
}
