package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ruh-integration-pages/internal/models"
)

func readCSV(path string) ([]models.Connector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, errors.New("csv must contain a 'name' header column")
	}
	cell := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []models.Connector
	for n, row := range rows[1:] {
		if nameCol >= len(row) || strings.TrimSpace(row[nameCol]) == "" {
			continue
		}
		c := models.Connector{Name: strings.TrimSpace(row[nameCol]), Logo: cell(row, "logo")}
		if v := cell(row, "published"); v != "" {
			p, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: published: %w", n+2, err)
			}
			c.Published = p
		}
		out = append(out, c)
	}
	return out, nil
}

func readNDJSON(path string) ([]models.Connector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.Connector
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// allow a bare name or {"name": "..."}
		if strings.HasPrefix(line, "{") {
			var c models.Connector
			if err := json.Unmarshal([]byte(line), &c); err != nil {
				return nil, err
			}
			if c.Name != "" {
				out = append(out, c)
			}
			continue
		}
		out = append(out, models.Connector{Name: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no connectors found in ndjson")
	}
	return out, nil
}

// WriteNDJSON writes any JSON-marshalable items as NDJSON to w.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
