/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

func TestFilesystemStorePutGet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFilesystemStore(root, zerolog.Nop())

	if err := store.CheckAccess(ctx); err != nil {
		t.Fatalf("check access: %v", err)
	}
	if err := store.Put(ctx, "01012024-02012024.docx", []byte("doc")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "01012024-02012024.docx")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	data, err := store.Get(ctx, "01012024-02012024.docx")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "doc" {
		t.Fatalf("data = %q, want %q", data, "doc")
	}
}

func TestFilesystemStoreMissingDirectory(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "output")
	store := NewFilesystemStore(root, zerolog.Nop())

	if err := store.CheckAccess(ctx); err == nil {
		t.Fatal("expected CheckAccess to fail for missing directory")
	}
	if err := store.Put(ctx, "a.docx", []byte("x")); err == nil {
		t.Fatal("expected Put to fail without creating the directory")
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("output directory was created: %v", err)
	}
}

func TestFilesystemStoreRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := NewFilesystemStore(path, zerolog.Nop()).CheckAccess(context.Background()); err == nil {
		t.Fatal("expected CheckAccess to fail for a regular file")
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3StorePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := newS3Store(fake, S3Config{Bucket: "sheets", Prefix: "/patrol/"}, zerolog.Nop())

	if err := store.Put(ctx, "01012024-02012024.docx", []byte("doc")); err != nil {
		t.Fatalf("put: %v", err)
	}
	key := "sheets/patrol/01012024-02012024.docx"
	if string(fake.objects[key]) != "doc" {
		t.Fatalf("objects = %v", fake.objects)
	}
	if fake.types[key] != ContentType(".docx") {
		t.Fatalf("content type = %q", fake.types[key])
	}

	data, err := store.Get(ctx, "01012024-02012024.docx")
	if err != nil || string(data) != "doc" {
		t.Fatalf("get = %q, %v", data, err)
	}
	if got := store.URL("a.ics"); got != "s3://sheets/patrol/a.ics" {
		t.Fatalf("url = %q", got)
	}
}

func TestS3StoreCheckAccess(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("forbidden")
	store := newS3Store(fake, S3Config{Bucket: "sheets", PublicBaseURL: "https://cdn.example.com/"}, zerolog.Nop())

	if err := store.CheckAccess(context.Background()); err == nil {
		t.Fatal("expected CheckAccess to surface HeadBucket error")
	}
	if got := store.URL("a.docx"); got != "https://cdn.example.com/a.docx" {
		t.Fatalf("url = %q", got)
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("x.ICS"); got != "text/calendar; charset=utf-8" {
		t.Fatalf("ContentType(.ICS) = %q", got)
	}
	if got := ContentType("x.bin"); got != "application/octet-stream" {
		t.Fatalf("ContentType(.bin) = %q", got)
	}
}
