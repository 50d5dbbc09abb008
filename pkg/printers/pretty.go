package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/categorize"
	"tableflip.dev/agenda/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	Now    time.Time
}

var spacing = strings.Repeat(" ", len("171dff69f8b99dca  "))

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)
	switch count {
	case 1:
		_, _ = c.Println(" item")
	default:
		_, _ = c.Println(" items")
	}
}

// Bucket prints one bucket's items, flagging overdue entries.
func (pp *PrettyPrint) Bucket(items ...alert.Item) {
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Print(spacing)
		}
		_, _ = f.Print(" none\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	r := color.New(color.FgHiRed, color.Bold)
	f := color.New(color.Faint)

	for _, item := range items {
		if pp.ShowID {
			_, _ = y.Print(item.ID)
			_, _ = y.Print(strings.Repeat(" ", max(1, len(spacing)-len(item.ID))))
		}
		marker := " "
		if item.Overdue(pp.now()) {
			marker = r.Sprint("!")
		}
		_, _ = t.Printf("%s [%s] %s  %s", marker, item.Source, item.Date.Local().Format("Jan 2 15:04"), item.Title)
		_, _ = f.Printf("  (%s)\n", timeutil.Until(pp.now(), item.Date))
	}
	_, _ = t.Println("")
}

// Focus highlights the single most urgent item.
func (pp *PrettyPrint) Focus(item *alert.Item) {
	if item == nil {
		return
	}
	f := color.New(color.Bold, color.FgHiCyan)
	if pp.ShowID {
		_, _ = f.Print(spacing)
	}
	_, _ = f.Printf("▶ %s (%s, %s)\n\n", item.Title, item.Source, timeutil.Until(pp.now(), item.Date))
}

// Summary renders the per-bucket counts table.
func (pp *PrettyPrint) Summary(counts map[categorize.Bucket]int) {
	table := uitable.New()
	table.AddRow("BUCKET", "ITEMS")
	for _, b := range categorize.AllBuckets() {
		table.AddRow(b.Title(), counts[b])
	}
	fmt.Println(table)
	fmt.Println("")
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
