package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"chat-shell/domain"
	"chat-shell/language"
	"chat-shell/observability"
	"chat-shell/search"
)

func renderRooms(rooms []*domain.Room, active *domain.Room) {
	if len(rooms) == 0 {
		color.Yellow.Println("No rooms yet, try 'create'")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Name", "Kind", "Members", "Tags", "Moderated"})
	for i, room := range rooms {
		name := room.Name
		if active != nil && room.ID == active.ID {
			name = color.Green.Sprintf("* %s", name)
		}
		moderated := ""
		if room.Moderated {
			moderated = "yes"
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			name,
			string(room.Kind),
			fmt.Sprintf("%d", len(room.Participants())),
			strings.Join(room.Tags, ", "),
			moderated,
		})
	}
	table.Render()
}

func renderMessages(room *domain.Room, messages []domain.Message, preferredLang string) {
	color.Cyan.Printf("-- %s --\n", room.Name)
	if len(messages) == 0 {
		color.Yellow.Println("No messages")
		return
	}

	for _, message := range messages {
		stamp := message.SentAt.Local().Format("15:04:05")
		flags := messageFlags(message, preferredLang)

		body := message.Content
		if message.Deleted {
			body = color.Gray.Sprint(body)
		}
		fmt.Printf("[%s] %s%s %s\n", stamp, color.Cyan.Sprint(shortID(message.SenderID)), flags, body)
	}
}

// messageFlags builds display annotations: encryption, pending
// self-destruct, and a translation hint when the detected language
// differs from the reader's preferred one.
func messageFlags(message domain.Message, preferredLang string) string {
	var flags []string
	if message.Encrypted {
		flags = append(flags, "enc")
	}
	if message.SelfDestruct && !message.Deleted {
		flags = append(flags, fmt.Sprintf("burns:%s", message.SelfDestructAfter))
	}
	if message.Translated {
		flags = append(flags, "translated")
	} else if !message.Deleted {
		if d := language.Detect(message.Content); language.NeedsTranslation(d, preferredLang) {
			flags = append(flags, "lang:"+d.Code)
		}
	}
	if len(flags) == 0 {
		return ""
	}
	return color.Gray.Sprintf(" (%s)", strings.Join(flags, ","))
}

func renderHits(hits []search.Hit) {
	if len(hits) == 0 {
		color.Yellow.Println("No matches")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Sender", "Content"})
	for _, hit := range hits {
		table.Append([]string{shortID(hit.RoomID), shortID(hit.SenderID), hit.Content})
	}
	table.Render()
}

func renderStats(stats observability.SessionStats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"messages sent", fmt.Sprintf("%d", stats.MessagesSent)})
	table.Append([]string{"messages destroyed", fmt.Sprintf("%d", stats.MessagesDestroyed)})
	table.Append([]string{"stale fetches discarded", fmt.Sprintf("%d", stats.StaleFetches)})
	table.Append([]string{"fetch errors", fmt.Sprintf("%d", stats.FetchErrors)})
	table.Append([]string{"rooms created", fmt.Sprintf("%d", stats.RoomsCreated)})
	table.Append([]string{"alloc mem (MB)", fmt.Sprintf("%d", stats.AllocMemMb)})
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
