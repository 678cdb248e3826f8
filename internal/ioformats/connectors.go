// Package ioformats reads and writes connector lists.
package ioformats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ruh-integration-pages/internal/models"
)

// ReadConnectors reads a connector list. JSON files may hold a bare array or
// an object with a "connectors" array. CSV needs a "name" header; NDJSON
// lines are objects or bare names. Other extensions try JSON, then CSV, then
// NDJSON.
func ReadConnectors(path string) ([]models.Connector, error) {
	var (
		list []models.Connector
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		list, err = readJSON(path)
	case ".csv":
		list, err = readCSV(path)
	case ".ndjson", ".jsonl":
		list, err = readNDJSON(path)
	default:
		if list, err = readJSON(path); err == nil {
			break
		}
		if list, err = readCSV(path); err == nil && len(list) > 0 {
			break
		}
		list, err = readNDJSON(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read connectors %s: %w", path, err)
	}
	return list, nil
}

func readJSON(path string) ([]models.Connector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	if data[0] == '{' {
		var wrapped struct {
			Connectors []models.Connector `json:"connectors"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Connectors == nil {
			return nil, errors.New(`object has no "connectors" array`)
		}
		return wrapped.Connectors, nil
	}

	var list []models.Connector
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// WriteConnectorsJSON writes list as an indented JSON array. The file is
// replaced atomically so a crash never leaves a truncated list behind.
func WriteConnectorsJSON(path string, list []models.Connector) error {
	if list == nil {
		list = []models.Connector{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return err
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
