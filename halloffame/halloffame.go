// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package halloffame contains a bounded archive of the best distinct members
// seen during a run.
package halloffame

import (
	"github.com/purpleidea/tgp/fitness"
	"github.com/purpleidea/tgp/util"
	"github.com/purpleidea/tgp/util/errwrap"

	"github.com/hashicorp/go-set/v3"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Member is anything that can be archived. The string is the canonical
// rendering that is used to detect duplicates, and the archive keeps copies so
// that later changes to a member don't change the archive.
type Member[T any] interface {
	fitness.Haver

	String() string

	Copy() T
}

// HallOfFame is a bounded archive sorted best first. A member that renders the
// same as one that was offered before is ignored, even if it was evicted
// since.
type HallOfFame[T Member[T]] struct {
	maxSize int
	entries []T
	seen    *set.Set[string]
}

// New returns a new empty archive that holds at most maxSize members. An
// archive with a size that is not positive never holds anything.
func New[T Member[T]](maxSize int) *HallOfFame[T] {
	return &HallOfFame[T]{
		maxSize: maxSize,
		entries: []T{},
		seen:    set.New[string](0),
	}
}

// MaxSize returns the capacity of the archive.
func (obj *HallOfFame[T]) MaxSize() int {
	return obj.maxSize
}

// Update offers every item to the archive. An item that was not seen before is
// inserted while the archive is not full, or if it is better than the worst
// member, which is then evicted. It returns the number of inserted items.
func (obj *HallOfFame[T]) Update(items []T) int {
	if obj.maxSize <= 0 {
		return 0
	}
	count := 0
	for _, item := range items {
		if !obj.seen.Insert(item.String()) {
			continue // already seen
		}
		if len(obj.entries) >= obj.maxSize {
			last := obj.entries[len(obj.entries)-1]
			if item.GetFitness().Cmp(last.GetFitness()) <= 0 {
				continue
			}
			obj.entries = obj.entries[:len(obj.entries)-1]
		}
		obj.insert(item.Copy())
		count++
	}
	return count
}

// insert keeps the entries sorted. A new entry goes before the existing ones
// that it is not worse than.
func (obj *HallOfFame[T]) insert(item T) {
	f := item.GetFitness()
	for i, e := range obj.entries {
		if e.GetFitness().Cmp(f) <= 0 {
			obj.entries = append(obj.entries[:i], append([]T{item}, obj.entries[i:]...)...)
			return
		}
	}
	obj.entries = append(obj.entries, item)
}

// Len returns the number of members.
func (obj *HallOfFame[T]) Len() int {
	return len(obj.entries)
}

// Get returns the member at this rank, where zero is the best.
func (obj *HallOfFame[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(obj.entries) {
		var zero T
		return zero, false
	}
	return obj.entries[i], true
}

// Entries returns the members, best first.
func (obj *HallOfFame[T]) Entries() []T {
	result := make([]T, len(obj.entries))
	copy(result, obj.entries)
	return result
}

// Clear removes all members and forgets everything that was seen.
func (obj *HallOfFame[T]) Clear() {
	obj.entries = []T{}
	obj.seen = set.New[string](0)
}

// Entry is one line of a report.
type Entry struct {
	Rank     int       `yaml:"rank"`
	Program  string    `yaml:"program"`
	Values   []float64 `yaml:"values,flow"`
	Weighted []float64 `yaml:"weighted,flow"`
}

// Report is the exported content of an archive.
type Report struct {
	Run     string   `yaml:"run,omitempty"`
	Entries []*Entry `yaml:"entries"`
}

// Report returns the content of the archive, best first.
func (obj *HallOfFame[T]) Report(run string) *Report {
	report := &Report{
		Run:     run,
		Entries: []*Entry{},
	}
	for i, e := range obj.entries {
		f := e.GetFitness()
		report.Entries = append(report.Entries, &Entry{
			Rank:     i + 1,
			Program:  e.String(),
			Values:   f.Values(),
			Weighted: f.Weighted(),
		})
	}
	return report
}

// WriteReport writes the report of the archive to a yaml file.
func (obj *HallOfFame[T]) WriteReport(fs afero.Fs, name, run string) error {
	data, err := yaml.Marshal(obj.Report(run))
	if err != nil {
		return errwrap.Wrapf(err, "could not encode the report")
	}
	if err := util.WriteFile(fs, name, data, 0644); err != nil {
		return errwrap.Wrapf(err, "could not write the report to `%s`", name)
	}
	return nil
}

// ReadReport reads a report that was written with WriteReport.
func ReadReport(fs afero.Fs, name string) (*Report, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	if err := yaml.Unmarshal(data, report); err != nil {
		return nil, errwrap.Wrapf(err, "could not decode the report")
	}
	return report, nil
}
