// Viewer prints the durable message log as a table, whichever backend
// holds it. Read-only; safe to run next to a live server using the file
// backend, but expects exclusive access for Badger.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"groupchat/internal"
	"groupchat/repositories"
)

type Config struct {
	LogBackend     string `env:"LOG_BACKEND,default=file"`
	LogFilepath    string `env:"LOG_FILEPATH,default=chatLog.json"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=data/chatlog"`
	LogLevel       string `env:"LOG_LEVEL,default=warn"`
}

func main() {
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatal("Error while reading configuration: ", err)
	}
	logger := internal.GetLoggerFromString(config.LogLevel)

	var repo repositories.LogRepository
	switch config.LogBackend {
	case "badger":
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.ERROR).
			WithReadOnly(true))
		if err != nil {
			log.Fatal("Error while opening Badger: ", err)
		}
		defer db.Close()
		repo = repositories.NewBadgerLogRepository(db, logger)
	default:
		repo = repositories.NewFileLogRepository(config.LogFilepath, logger)
	}

	entries, err := repo.All()
	if err != nil {
		log.Fatal("Error while reading the log: ", err)
	}

	keys := make([]int, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Author", "Body", "State"})
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

	for _, key := range keys {
		entry := entries[key]
		state := ""
		if entry.IsDeleted() {
			state = "deleted"
		}
		table.Append([]string{strconv.Itoa(key), entry.Author, entry.Body, state})
	}
	table.Render()

	fmt.Printf("\n%d entries (%s backend)\n", len(entries), config.LogBackend)
}
