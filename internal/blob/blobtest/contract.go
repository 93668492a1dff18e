// Package blobtest holds the behavioral contract every blob driver must pass.
package blobtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"decotree/internal/blob/core"
)

// RunStoreContract exercises create-only puts, reads, listing and deletion
// against an empty store.
func RunStoreContract(t *testing.T, store core.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Head(ctx, "snapshots/missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head missing: expected ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "snapshots/missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get missing: expected ErrNotFound, got %v", err)
	}
	if ok, err := store.Delete(ctx, "snapshots/missing"); err != nil || ok {
		t.Fatalf("delete missing: ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"label":"root"}`)
	info, err := store.Put(ctx, "snapshots/a/0001.json", bytes.NewReader(payload), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"tree": "a"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "snapshots/a/0001.json" || info.Size != int64(len(payload)) {
		t.Fatalf("unexpected put info %+v", info)
	}
	if _, err := store.Put(ctx, "snapshots/a/0001.json", bytes.NewReader([]byte("x")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("duplicate put: expected ErrExists, got %v", err)
	}
	for _, key := range []string{"snapshots/a/0002.json", "snapshots/b/0001.json"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(payload), core.PutOptions{ContentType: "application/json"}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	head, err := store.Head(ctx, "snapshots/a/0001.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "application/json" || head.Size != int64(len(payload)) {
		t.Fatalf("unexpected head %+v", head)
	}
	got, rc, err := store.Get(ctx, "snapshots/a/0001.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, payload) || got.Key != "snapshots/a/0001.json" {
		t.Fatalf("unexpected get %+v %q", got, body)
	}

	list, err := store.List(ctx, "snapshots/a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "snapshots/a/0001.json" || list[1].Key != "snapshots/a/0002.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %d %v", len(all), err)
	}

	ok, err := store.Delete(ctx, "snapshots/a/0001.json")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if ok, err := store.Delete(ctx, "snapshots/a/0001.json"); err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
	if list, _ := store.List(ctx, "snapshots/a/"); len(list) != 1 {
		t.Fatalf("expected one remaining blob, got %+v", list)
	}
}
