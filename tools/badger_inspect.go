package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Maintenance tool: dumps the chat store in a readable table.
// Usage: go run ./tools -db /tmp/chat-shell/badger -prefix msg:
func main() {
	dbPath := flag.String("db", "/tmp/chat-shell/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg: | room: | user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Detail"})
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
				table.Append([]string{key, summarize(key, v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithLoggingLevel(badger.ERROR).
		WithReadOnly(true)
	return badger.Open(options)
}

// summarize renders one stored record per key family without depending
// on the repository types; unknown shapes fall back to raw JSON.
func summarize(key string, value []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(value, &fields); err != nil {
		return fmt.Sprintf("unreadable (%v)", err)
	}

	switch {
	case strings.HasPrefix(key, "msg:"):
		sentAt := ""
		if ns, ok := fields["sent_at"].(float64); ok {
			sentAt = time.Unix(0, int64(ns)).UTC().Format(time.RFC3339)
		}
		return fmt.Sprintf("%s %v: %v (deleted=%v)",
			sentAt, fields["sender_id"], fields["content"], fields["deleted"])
	case strings.HasPrefix(key, "room:"):
		return fmt.Sprintf("%v kind=%v moderated=%v participants=%v",
			fields["name"], fields["kind"], fields["moderated"], fields["participants"])
	case strings.HasPrefix(key, "user:"):
		return fmt.Sprintf("%v created_at=%v", fields["username"], fields["created_at"])
	default:
		raw, _ := json.Marshal(fields)
		return string(raw)
	}
}
