package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sidereusnuntius/donata/internal/domain"
)

func TestProfilePatch(t *testing.T) {
	before := domain.Profile{Name: "Alice", Socials: domain.Socials{domain.GitHub: "alice"}}
	after := domain.Profile{Name: "Alice B.", Email: "a@example.com", Socials: domain.Socials{domain.Lens: "alice"}}

	patch := ProfilePatch(before, after)
	if patch == "" {
		t.Fatal("expected a patch")
	}

	result, ok, err := Apply(Render(before), patch)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("patch did not apply cleanly")
	}
	if result != Render(after) {
		t.Errorf("expected\n%s\ngot\n%s", Render(after), result)
	}
}

func TestProfilePatch_NoChange(t *testing.T) {
	p := domain.Profile{Name: "Alice", FID: 1, Socials: domain.Socials{domain.GitHub: "alice"}}
	q := p.Clone()
	q.FID = 2
	if patch := ProfilePatch(p, q); patch != "" {
		t.Errorf("expected no patch, got %q", patch)
	}
}

func TestReplay(t *testing.T) {
	first := domain.Profile{Name: "Alice"}
	second := domain.Profile{Name: "Alice", Email: "alice@example.com", Socials: domain.Socials{domain.GitHub: "alice"}}
	patches := []string{
		ProfilePatch(domain.Profile{}, first),
		ProfilePatch(first, second),
	}

	versions, err := Replay(patches)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{Render(first), Render(second)}, versions); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff([]string{"email", "github"}, Changed(versions[0], versions[1])); diff != "" {
		t.Error(diff)
	}
}

func TestReplay_MalformedPatch(t *testing.T) {
	patch := ProfilePatch(domain.Profile{}, domain.Profile{Name: "Alice"})
	versions, err := Replay([]string{patch, "@@ not a patch"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(versions) != 1 {
		t.Errorf("expected the versions before the failure, got %d", len(versions))
	}
}
