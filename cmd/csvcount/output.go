package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajitpratap0/csvcount/pkg/count"
)

var humanPrinter = message.NewPrinter(language.English)

// jsonResult is the --json output document
type jsonResult struct {
	Count    uint64 `json:"count"`
	Width    int    `json:"width,omitempty"`
	Strategy string `json:"strategy"`
	Fallback bool   `json:"fallback,omitempty"`
}

// formatResult renders res as one line without the trailing newline
func formatResult(res count.Result, out outputFlags) string {
	n := fmt.Sprintf("%d", res.Count)
	if out.human {
		n = humanPrinter.Sprintf("%d", res.Count)
	}
	if !out.width {
		return n
	}

	w := fmt.Sprintf("%d", res.Width)
	if out.human {
		w = humanPrinter.Sprintf("%d", res.Width)
	}
	return n + ";" + w
}

func writeResult(w io.Writer, res count.Result, out outputFlags) error {
	if out.json {
		doc := jsonResult{
			Count:    res.Count,
			Strategy: string(res.Strategy),
			Fallback: res.Fallback,
		}
		if out.width {
			doc.Width = res.Width
		}
		return json.NewEncoder(w).Encode(doc)
	}

	_, err := fmt.Fprintln(w, formatResult(res, out))
	return err
}
