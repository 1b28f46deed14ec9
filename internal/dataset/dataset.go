package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"review-eval-app/config"
)

// Variant identifies one of the two generation configurations a review was
// produced with. The identifier is internal and never shown to raters.
type Variant string

const (
	Variant53 Variant = "5_3"
	Variant55 Variant = "5_5"
)

// Variants is the fixed validation order: submissions are checked variant by
// variant, independent of the blinded display order.
var Variants = [2]Variant{Variant53, Variant55}

type User struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type Assignment struct {
	UserID string `json:"user_id"`
	Paper1 string `json:"paper_1"`
	Paper2 string `json:"paper_2"`
}

// Paper is a resolved paper: its collection, where its PDF lives, and the raw
// review payloads for both variants (either may be nil).
type Paper struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	PDFPath    string          `json:"pdf_path"`
	Reviews    map[Variant]any `json:"-"`
}

type collectionData struct {
	cfg     config.Collection
	reviews map[Variant]map[string]any
}

// Snapshot is the read-once, immutable view of all metadata: user table,
// assignment table and both collections' review datasets. It is built at
// startup and lives for the process lifetime; underlying file changes are not
// picked up without a restart.
type Snapshot struct {
	users       []User
	assignments []Assignment
	collections [2]collectionData
	warnings    []string
}

// Load reads everything concurrently and degrades per input: a missing or
// unreadable file leaves its table empty and adds a warning instead of
// failing the process.
func Load(cfg config.AppConfig) *Snapshot {
	snap := &Snapshot{}
	var userWarn, mappingWarn string
	reviewWarns := make([][]string, 2)

	var g errgroup.Group
	g.Go(func() error {
		snap.users, userWarn = loadUsers(filepath.Join(cfg.DataDir, "user.csv"))
		return nil
	})
	g.Go(func() error {
		snap.assignments, mappingWarn = loadAssignments(filepath.Join(cfg.DataDir, "mapping.csv"))
		return nil
	})
	for i := range cfg.Collections {
		i := i
		g.Go(func() error {
			snap.collections[i], reviewWarns[i] = loadCollection(cfg.Collections[i])
			return nil
		})
	}
	g.Wait()

	for _, w := range append([]string{userWarn, mappingWarn}, append(reviewWarns[0], reviewWarns[1]...)...) {
		if w != "" {
			snap.warnings = append(snap.warnings, w)
			log.Println("dataset:", w)
		}
	}
	return snap
}

func loadCollection(cfg config.Collection) (collectionData, []string) {
	data := collectionData{
		cfg:     cfg,
		reviews: map[Variant]map[string]any{},
	}
	var warnings []string
	for _, v := range Variants {
		path := filepath.Join(cfg.JSONDir, fmt.Sprintf("inference_new_papers_%s.json", v))
		reviews, warn := loadReviewFile(path)
		data.reviews[v] = reviews
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}
	return data, warnings
}

func loadReviewFile(path string) (map[string]any, string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, ""
		}
		return map[string]any{}, fmt.Sprintf("couldn't read %s: %v", path, err)
	}
	var reviews map[string]any
	if err := json.Unmarshal(raw, &reviews); err != nil {
		return map[string]any{}, fmt.Sprintf("couldn't parse %s: %v", path, err)
	}
	return reviews, ""
}

func loadUsers(path string) ([]User, string) {
	rows, warn := readCSVFile(path)
	if rows == nil {
		return nil, warn
	}
	var users []User
	for _, row := range rows {
		name := row["Name"]
		if name == "" {
			continue
		}
		users = append(users, User{Name: name, ID: row["User"]})
	}
	return users, ""
}

func loadAssignments(path string) ([]Assignment, string) {
	rows, warn := readCSVFile(path)
	if rows == nil {
		return nil, warn
	}
	var assignments []Assignment
	for _, row := range rows {
		if row["user"] == "" {
			continue
		}
		assignments = append(assignments, Assignment{
			UserID: row["user"],
			Paper1: row["paper_1"],
			Paper2: row["paper_2"],
		})
	}
	return assignments, ""
}

// readCSVFile returns one map per data row, keyed by the trimmed header
// names. A missing file is not a warning; a malformed one is.
func readCSVFile(path string) ([]map[string]string, string) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ""
		}
		return nil, fmt.Sprintf("couldn't read %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Sprintf("couldn't parse %s: %v", path, err)
	}
	if len(records) < 1 {
		return nil, ""
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for _, record := range records[1:] {
		row := map[string]string{}
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, ""
}

// Warnings lists the load-time degradations, for inline display.
func (s *Snapshot) Warnings() []string {
	return s.warnings
}

func (s *Snapshot) UserNames() []string {
	names := make([]string, 0, len(s.users))
	for _, u := range s.users {
		names = append(names, u.Name)
	}
	return names
}

func (s *Snapshot) UserByName(name string) (User, bool) {
	for _, u := range s.users {
		if u.Name == name {
			return u, true
		}
	}
	return User{}, false
}

// Assignment returns the first assignment row for the user. The second
// return is false when the user has no papers assigned.
func (s *Snapshot) Assignment(userID string) (Assignment, bool) {
	for _, a := range s.assignments {
		if a.UserID == userID {
			return a, true
		}
	}
	return Assignment{}, false
}

// FindPaper locates a paper by id. Collections are checked in fixed order
// and the first one containing the id under either variant key is
// authoritative; an id that happens to exist in both resolves to the first
// collection. Either variant payload may be nil in the result.
func (s *Snapshot) FindPaper(paperID string) (Paper, bool) {
	for _, c := range s.collections {
		_, in53 := c.reviews[Variant53][paperID]
		_, in55 := c.reviews[Variant55][paperID]
		if !in53 && !in55 {
			continue
		}
		return Paper{
			ID:         paperID,
			Collection: c.cfg.Name,
			PDFPath:    filepath.Join(c.cfg.PDFDir, paperID+".pdf"),
			Reviews: map[Variant]any{
				Variant53: c.reviews[Variant53][paperID],
				Variant55: c.reviews[Variant55][paperID],
			},
		}, true
	}
	return Paper{}, false
}
