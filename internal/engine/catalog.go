// Package engine holds the storage-independent planning algorithms: lecture
// classification, semester credit accumulation, plan recalculation, progress
// tallying and change-history coalescing. Everything here works on plain
// in-memory values loaded once per operation.
package engine

import (
	"sort"

	"github.com/gradplan/planner-backend/internal/model"
)

type linkKey struct {
	majorID   int
	lectureID int
}

// Catalog indexes the reference rows needed to classify a set of lectures.
type Catalog struct {
	links   map[linkKey][]model.MajorLecture
	credits map[int][]model.LectureCredit
}

// NewCatalog builds the lookup index. General and general-elective links
// never attribute a lecture to a major and are dropped here.
func NewCatalog(links []model.MajorLecture, credits []model.LectureCredit) *Catalog {
	c := &Catalog{
		links:   make(map[linkKey][]model.MajorLecture),
		credits: make(map[int][]model.LectureCredit),
	}

	for _, l := range links {
		if l.LectureType == model.LectureTypeGeneral || l.LectureType == model.LectureTypeGeneralElective {
			continue
		}
		k := linkKey{majorID: l.MajorID, lectureID: l.LectureID}
		c.links[k] = append(c.links[k], l)
	}
	for k, ls := range c.links {
		// Lecture type descending: teaching, major_requirement, major_elective.
		sort.SliceStable(ls, func(i, j int) bool {
			if ls[i].LectureType != ls[j].LectureType {
				return ls[i].LectureType > ls[j].LectureType
			}
			return ls[i].ID < ls[j].ID
		})
		c.links[k] = ls
	}

	for _, cr := range credits {
		c.credits[cr.LectureID] = append(c.credits[cr.LectureID], cr)
	}
	for id, cs := range c.credits {
		sort.SliceStable(cs, func(i, j int) bool {
			if cs[i].StartYear != cs[j].StartYear {
				return cs[i].StartYear > cs[j].StartYear
			}
			return cs[i].ID > cs[j].ID
		})
		c.credits[id] = cs
	}

	return c
}

// BestLink returns the strongest link between the major and the lecture
// valid at year.
func (c *Catalog) BestLink(majorID, lectureID, year int) (model.MajorLecture, bool) {
	for _, l := range c.links[linkKey{majorID: majorID, lectureID: lectureID}] {
		if l.ValidAt(year) {
			return l, true
		}
	}
	return model.MajorLecture{}, false
}

// CreditAt returns the lecture's overridden credit at year. Overlapping
// overrides resolve to the one with the latest start year.
func (c *Catalog) CreditAt(lectureID, year int) (int, bool) {
	for _, cr := range c.credits[lectureID] {
		if cr.ValidAt(year) {
			return cr.Credit, true
		}
	}
	return 0, false
}
