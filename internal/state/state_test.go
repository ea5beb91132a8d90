package state

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func TestKV_PutGetDelete(t *testing.T) {
	kv := &KV{Dir: filepath.Join(t.TempDir(), "state")}
	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := kv.Put("k", []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put("k", []byte("v2")); err != nil {
		t.Fatalf("put again: %v", err)
	}
	b, ok, err := kv.Get("k")
	if err != nil || !ok || string(b) != "v2" {
		t.Fatalf("get: %q %v %v", b, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	entries, _ := os.ReadDir(kv.Dir)
	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestKV_Errors(t *testing.T) {
	var empty KV
	if err := empty.Put("k", nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	kv := &KV{Dir: t.TempDir()}
	for _, key := range []string{"", "../x", "a/b", ".."} {
		if err := kv.Put(key, nil); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestKV_StrictPerms(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions differ on windows")
	}
	kv := &KV{Dir: filepath.Join(t.TempDir(), "s"), StrictPerms: true}
	if err := kv.Put("k", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	di, _ := os.Stat(kv.Dir)
	fi, _ := os.Stat(filepath.Join(kv.Dir, "k.json"))
	if di.Mode().Perm() != 0o700 || fi.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected perms dir=%v file=%v", di.Mode().Perm(), fi.Mode().Perm())
	}
}

func TestSets_RoundTripAndCorruption(t *testing.T) {
	kv := &KV{Dir: t.TempDir()}
	sets := Sets{KV: kv}
	if got := sets.Load(KeyRead); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
	if err := sets.Save(KeyRead, Set{"b": true, "a": true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _, _ := kv.Get(KeyRead)
	if string(raw) != `["a","b"]` {
		t.Fatalf("unexpected stored form %s", raw)
	}
	if got := sets.Load(KeyRead).Sorted(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected loaded set %v", got)
	}
	if err := kv.Put(KeySelected, []byte("{not json")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := sets.Load(KeySelected); len(got) != 0 {
		t.Fatalf("corrupt value should load empty, got %v", got)
	}
}

func TestSet_Operations(t *testing.T) {
	s := Set{}
	if !s.Toggle("x") || s.Toggle("x") {
		t.Fatalf("toggle should add then remove")
	}
	s.Add("a", "b", "c")
	s.Remove("b")
	if got := s.Sorted(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("unexpected members %v", got)
	}
	sets := Sets{KV: &KV{Dir: t.TempDir()}}
	got, err := sets.Update(KeySelected, func(s Set) { s.Add("z") })
	if err != nil || !got["z"] || !sets.Load(KeySelected)["z"] {
		t.Fatalf("update failed: %v %v", got, err)
	}
}
