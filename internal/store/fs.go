package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/foldlab/foldd/internal/model"
)

const (
	inputsDir  = "jobs"
	resultsDir = "results"

	inputFile    = "input.json"
	statusFile   = "status.json"
	artifactFile = "output.pdb"
)

// Compile-time interface satisfaction check.
var _ Store = (*FSStore)(nil)

// FSStore implements Store on the local filesystem. Each job id owns one
// directory under the inputs root and one under the results root, so state
// survives restarts and is inspectable with ordinary tools.
//
// Files are written to a temp file and renamed into place, so readers see
// either the previous complete record or the new one, never partial bytes.
// The status file and the artifact file are still two independent writes; a
// reader can briefly observe one without the other.
type FSStore struct {
	root string
}

// NewFSStore creates the inputs and results roots under dir.
func NewFSStore(dir string) (*FSStore, error) {
	for _, sub := range []string{inputsDir, resultsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s root: %w", sub, err)
		}
	}
	return &FSStore{root: dir}, nil
}

func (s *FSStore) inputPath(id string) string {
	return filepath.Join(s.root, inputsDir, id, inputFile)
}

func (s *FSStore) resultPath(id, file string) string {
	return filepath.Join(s.root, resultsDir, id, file)
}

// PutInput writes the input record, replacing any existing one.
func (s *FSStore) PutInput(_ context.Context, in *model.JobInput) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	if err := writeFileAtomic(s.inputPath(in.JobID), data); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

// GetInput retrieves the input record for a job.
func (s *FSStore) GetInput(_ context.Context, id string) (*model.JobInput, error) {
	data, err := os.ReadFile(s.inputPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	in := &model.JobInput{}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("%w: decode input: %v", ErrUnreadable, err)
	}
	return in, nil
}

// HasInput reports whether an input record exists for the id.
func (s *FSStore) HasInput(_ context.Context, id string) (bool, error) {
	_, err := os.Stat(s.inputPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat input: %w", err)
	}
	return true, nil
}

// PutStatus fully overwrites the status record for a job.
func (s *FSStore) PutStatus(_ context.Context, rec *model.StatusRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := writeFileAtomic(s.resultPath(rec.JobID, statusFile), data); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

// GetStatus retrieves the status record for a job.
func (s *FSStore) GetStatus(_ context.Context, id string) (*model.StatusRecord, error) {
	data, err := os.ReadFile(s.resultPath(id, statusFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	rec := &model.StatusRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: decode status: %v", ErrUnreadable, err)
	}
	return rec, nil
}

// PutArtifact writes the artifact bytes for a job.
func (s *FSStore) PutArtifact(_ context.Context, id string, data []byte) error {
	if err := writeFileAtomic(s.resultPath(id, artifactFile), data); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// GetArtifact retrieves the artifact bytes for a job.
func (s *FSStore) GetArtifact(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(s.resultPath(id, artifactFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// ListIDs returns the ids of all jobs with an input record, in directory order.
func (s *FSStore) ListIDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, inputsDir))
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it into place, creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
