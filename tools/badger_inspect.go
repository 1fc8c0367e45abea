package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cinechat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Read-only dump of the gateway store, one table per run. Point it at the
// live BADGER_FILEPATH; the lock guard is bypassed so the gateway can keep
// running.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "movie:", "Prefix to scan (user:id:, user:email:, movie:, genre:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(describe(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe decodes the value according to its key namespace; unknown or
// undecodable entries fall back to a raw size row instead of aborting the
// whole dump.
func describe(key string, val []byte) []string {
	switch {
	case strings.HasPrefix(key, "user:id:"):
		var user repositories.User
		if err := json.Unmarshal(val, &user); err == nil {
			return []string{key, "USER", shortID(user.ID), user.Email}
		}
	case strings.HasPrefix(key, "user:email:"):
		// Email index: value is the account ID
		return []string{key, "INDEX", shortID(string(val)), strings.TrimPrefix(key, "user:email:")}
	case strings.HasPrefix(key, "movie:"):
		var movie repositories.Movie
		if err := json.Unmarshal(val, &movie); err == nil {
			return []string{key, "MOVIE", shortID(movie.ID), fmt.Sprintf("%s (%d) %.1f", movie.Title, movie.Year, movie.Rating)}
		}
	case strings.HasPrefix(key, "genre:"):
		var genre repositories.Genre
		if err := json.Unmarshal(val, &genre); err == nil {
			return []string{key, "GENRE", shortID(genre.ID), genre.Name}
		}
	}
	return []string{key, "RAW", "--------", fmt.Sprintf("Size: %d bytes", len(val))}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Corruption: open once in write mode so badger can truncate,
		// then reopen read-only.
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
