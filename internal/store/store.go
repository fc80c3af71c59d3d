// Package store keeps a CSV log of the values shown on the panel, one file
// per day.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
)

const (
	dirName    = ".sensorlcd-data"
	timeLayout = "2006-01-02T15:04:05"
	fileLayout = "2006-01-02"
)

var header = []string{"time", "slot", "key", "label", "category", "value"}

// DiskStore appends one row per active slot and frame to
// <dir>/YYYY-MM-DD.csv:
//
//	time,slot,key,label,category,value
type DiskStore struct {
	dir     string
	current *os.File
	writer  *csv.Writer
	curDate string
}

// Row is one line of a log file.
type Row struct {
	Time     time.Time
	Slot     string
	Key      string
	Label    string
	Category sensor.Category
	Value    float64
}

// New opens a store in dir, or in ~/.sensorlcd-data when dir is empty.
func New(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = DataDir()
		if dir == "" {
			return nil, fmt.Errorf("cannot find home dir")
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create data dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir is the directory files are written to.
func (d *DiskStore) Dir() string { return d.dir }

// Write appends the active slots of a to the file for t's day, rolling
// over to a new file when the day changes.
func (d *DiskStore) Write(a slot.Assignment, t time.Time) error {
	if err := d.rotate(t); err != nil {
		return err
	}

	ts := t.Format(timeLayout)
	for _, s := range a {
		if !s.Active {
			continue
		}
		value := ""
		if s.Found {
			value = strconv.FormatFloat(s.Value, 'f', 1, 64)
		}
		d.writer.Write([]string{ts, s.Position.String(), s.Key.String(), s.Label, s.Category.String(), value})
	}
	d.writer.Flush()
	return d.writer.Error()
}

func (d *DiskStore) rotate(t time.Time) error {
	date := t.Format(fileLayout)
	if d.curDate == date && d.current != nil {
		return nil
	}
	d.Close()

	f, err := os.OpenFile(filepath.Join(d.dir, date+".csv"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	d.current = f
	d.writer = csv.NewWriter(f)
	d.curDate = date

	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		d.writer.Write(header)
	}
	return nil
}

// Close flushes and closes the current file.
func (d *DiskStore) Close() {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.current != nil {
		d.current.Close()
		d.current = nil
	}
}

// ListDays returns the dates that have a log in dir, newest first.
func ListDays(dir string) ([]string, error) {
	if dir == "" {
		dir = DataDir()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var days []string
	for _, e := range entries {
		if name := e.Name(); strings.HasSuffix(name, ".csv") {
			days = append(days, strings.TrimSuffix(name, ".csv"))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

// LoadFile reads every row of a log file. Rows that do not parse are
// skipped; a missing value (sensor absent) loads as Found=false.
func LoadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == header[0] {
			continue
		}
		if len(rec) < len(header) {
			continue
		}
		t, err := time.ParseInLocation(timeLayout, rec[0], time.Local)
		if err != nil {
			continue
		}
		row := Row{
			Time:     t,
			Slot:     rec[1],
			Key:      rec[2],
			Label:    rec[3],
			Category: sensor.ParseCategory(rec[4]),
		}
		if rec[5] != "" {
			v, err := strconv.ParseFloat(rec[5], 64)
			if err != nil {
				continue
			}
			row.Value = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DataDir is the default log directory, or "" without a home directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dirName)
}
