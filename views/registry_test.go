package views

import "testing"

type stubView struct {
	unmounted int
}

func (v *stubView) Unmount() {
	v.unmounted++
}

type otherView struct {
	stubView
}

func TestMountUnmountsPrevious(t *testing.T) {
	r := NewRegistry()
	home := &stubView{}
	list := &otherView{}

	r.Mount("s1", "/", home)
	r.Mount("s1", "/appointments", list)

	if home.unmounted != 1 {
		t.Errorf("home unmounted %d times", home.unmounted)
	}
	if list.unmounted != 0 {
		t.Error("new view unmounted")
	}
	if path, _ := r.Path("s1"); path != "/appointments" {
		t.Errorf("path = %q", path)
	}
}

func TestRemountSameViewKeepsIt(t *testing.T) {
	r := NewRegistry()
	home := &stubView{}
	r.Mount("s1", "/", home)
	r.Mount("s1", "/", home)
	if home.unmounted != 0 {
		t.Error("view unmounted on remount")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	r := NewRegistry()
	a, b := &stubView{}, &stubView{}
	r.Mount("a", "/", a)
	r.Mount("b", "/", b)
	r.Drop("a")

	if a.unmounted != 1 || b.unmounted != 0 {
		t.Errorf("a=%d b=%d", a.unmounted, b.unmounted)
	}
	if _, ok := r.Path("a"); ok {
		t.Error("dropped session still has a view")
	}
	if _, ok := Lookup[*stubView](r, "b"); !ok {
		t.Error("other session lost its view")
	}
}

func TestLookupChecksType(t *testing.T) {
	r := NewRegistry()
	r.Mount("s1", "/appointments", &otherView{})

	if _, ok := Lookup[*stubView](r, "s1"); ok {
		t.Error("lookup matched the wrong view type")
	}
	if _, ok := Lookup[*otherView](r, "s1"); !ok {
		t.Error("lookup missed the live view")
	}
	if _, ok := Lookup[*otherView](r, "none"); ok {
		t.Error("lookup found a view for an unknown session")
	}
}
