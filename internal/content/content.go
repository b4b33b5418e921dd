package content

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/blake2b"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/logger"
)

// DefaultTimeout bounds a fetch so startup never hangs on the content source
const DefaultTimeout = 10 * time.Second

// Document is the loaded, validated and sorted content list
type Document struct {
	Entries []calendar.DayEntry
	// Revision identifies the raw payload; empty when nothing was loaded.
	Revision string
}

var validate = validator.New()

// Load fetches and decodes the content document. It never fails: any fetch,
// status or parse error is logged and an empty document is returned.
func Load(ctx context.Context, src Source, timeout time.Duration, log *logger.Logger) Document {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("content").WithFields("source", src.String())

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := src.Fetch(ctx)
	if err != nil {
		log.Errorw("Error loading content", "error", err)
		return Document{}
	}

	doc, err := Parse(raw, log)
	if err != nil {
		log.Errorw("Error loading content", "error", err)
		return Document{}
	}

	log.Infow("Content loaded successfully", "days", len(doc.Entries), "revision", doc.Revision)
	return doc
}

// Parse decodes and validates a raw document. Invalid entries and duplicate
// days are dropped with a warning; the list comes back sorted by day.
func Parse(raw []byte, log *logger.Logger) (Document, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var entries []calendar.DayEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Document{}, fmt.Errorf("malformed content: %w", err)
	}

	calendar.SortEntries(entries)

	kept := make([]calendar.DayEntry, 0, len(entries))
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if err := validate.Struct(e); err != nil {
			log.Warnw("Skipping invalid content entry", "day", e.Day, "error", err)
			continue
		}
		if seen[e.Day] {
			log.Warnw("Skipping duplicate content entry", "day", e.Day)
			continue
		}
		if t := e.UnknownType(); t != "" {
			log.Warnw("Unknown content type", "day", e.Day, "type", t)
		}
		seen[e.Day] = true
		kept = append(kept, e)
	}

	return Document{Entries: kept, Revision: Revision(raw)}, nil
}

// Revision is the BLAKE2b-256 digest of a payload, hex encoded
func Revision(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
