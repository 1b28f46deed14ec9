package results

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/uniplaces/carbon"
)

// Record is one rated item, externalized as a row in the results log.
type Record struct {
	Timestamp  string `json:"timestamp"`
	User       string `json:"user"`
	PaperID    string `json:"paper_id"`
	ReviewType string `json:"review_type"`
	Section    string `json:"section"`
	PointIndex int    `json:"point_index"`
	PointText  string `json:"point_text"`
	Rating     string `json:"rating"`
}

// Now returns the ISO-8601 timestamp stamped onto records.
func Now() string {
	return carbon.Now().Format(time.RFC3339)
}

var header = []string{"timestamp", "user", "paper_id", "review_type", "section", "point_index", "point_text", "rating"}

type batch struct {
	records []Record
	done    chan error
}

// Writer serializes appends to the results log. Submissions from concurrent
// sessions all funnel through one goroutine, so batches never interleave;
// each batch hits the file in full or not at all from the caller's view.
type Writer struct {
	path    string
	batches chan batch
}

func NewWriter(path string) *Writer {
	w := &Writer{
		path:    path,
		batches: make(chan batch, 10),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	log.Println("Starting results writer...")
	for b := range w.batches {
		b.done <- w.write(b.records)
	}
}

// Append writes one submission's rows as a single batch and reports the
// write error back to the caller.
func (w *Writer) Append(records []Record) error {
	b := batch{records: records, done: make(chan error, 1)}
	w.batches <- b
	return <-b.done
}

func (w *Writer) write(records []Record) error {
	_, statErr := os.Stat(w.path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needHeader {
		cw.Write(header)
	}
	for _, r := range records {
		cw.Write([]string{
			r.Timestamp,
			r.User,
			r.PaperID,
			r.ReviewType,
			r.Section,
			strconv.Itoa(r.PointIndex),
			r.PointText,
			r.Rating,
		})
	}
	cw.Flush()
	return cw.Error()
}
