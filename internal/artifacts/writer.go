// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package artifacts persists generated sub-templates to local disk on behalf
// of the splitting core, which itself performs no I/O.
package artifacts

import (
	"bytes"
	"encoding/json"
	"log"
	"path/filepath"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/stackshard/stackshard/internal/cfntpl"
)

// File is one artifact to persist.
type File struct {
	// Name is the file name, relative to the writer's directory.
	Name string

	// Content is the serialized artifact.
	Content []byte
}

// Writer writes artifact files under a single directory, creating the
// directory if absent and overwriting existing files.
type Writer struct {
	FS  afero.Afero
	Dir string
}

// concurrent write limit; partitions never share output files, so writes
// are independent.
const writeConcurrency = 4

// WriteAll persists every given file. Failures are reported per file and do
// not roll back files already written: the caller's in-memory state is
// unaffected either way, since generation and persistence are separate
// phases.
func (w Writer) WriteAll(files []File) error {
	if len(files) == 0 {
		return nil
	}

	if err := w.FS.MkdirAll(w.Dir, 0755); err != nil {
		// Some filesystems refuse MkdirAll even when the directory is
		// already there; only a genuinely missing directory is fatal.
		if ok, _ := w.FS.DirExists(w.Dir); !ok {
			return err
		}
	}

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	var eg errgroup.Group
	eg.SetLimit(writeConcurrency)
	for _, f := range files {
		f := f
		eg.Go(func() error {
			path := filepath.Join(w.Dir, f.Name)
			if err := w.FS.WriteFile(path, f.Content, 0644); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, &WriteError{Name: f.Name, Err: err})
				mu.Unlock()
				return nil
			}
			log.Printf("[TRACE] artifacts: wrote %s (%d bytes)", path, len(f.Content))
			return nil
		})
	}
	// The group function never returns an error; failures are accumulated
	// above so that one bad file doesn't hide the others.
	_ = eg.Wait()

	return errs.ErrorOrNil()
}

// WriteError reports a failure to persist one artifact.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return "writing " + e.Name + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// MarshalTemplate serializes a template to indented JSON, the form written
// to disk and uploaded for nested stack provisioning.
func MarshalTemplate(t *cfntpl.Template) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
