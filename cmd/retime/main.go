package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jsnanigans/retime/pkg/retime"
)

func main() {
	baselinePath := flag.String("baseline", "", "path to a baseline document JSON file")
	editedPath := flag.String("edited", "", "path to the edited plain-text file")
	flag.Parse()

	baseline, editedText := demoInputs()
	if *baselinePath != "" {
		data, err := os.ReadFile(*baselinePath)
		if err != nil {
			log.Fatalf("read baseline: %v", err)
		}
		var doc retime.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Fatalf("parse baseline: %v", err)
		}
		baseline = doc
	}
	if *editedPath != "" {
		data, err := os.ReadFile(*editedPath)
		if err != nil {
			log.Fatalf("read edited text: %v", err)
		}
		editedText = string(data)
	}

	tokens := retime.Realign(retime.DocumentToTokens(baseline), editedText, retime.DefaultOptions())

	fmt.Println("--- Alignment Preview ---")
	fmt.Println(retime.VisualizeTokens(tokens))
	fmt.Println("-------------------------")

	report := retime.Validate(tokens, retime.DefaultOptions())
	if report.OK {
		fmt.Println("chronology: ok")
	} else {
		fmt.Println("chronology issues:")
		for _, issue := range report.Issues {
			fmt.Printf("  %s\n", issue)
		}
	}

	out, err := json.MarshalIndent(retime.TokensToDocument(tokens), "", "  ")
	if err != nil {
		log.Fatalf("encode document: %v", err)
	}
	fmt.Println(string(out))
}

// demoInputs returns a small baseline and an edit that exercises keeps,
// deletes, and inserts at once.
func demoInputs() (retime.Document, string) {
	doc := retime.Document{
		Segments: []retime.Segment{
			{Start: 0, End: 2.4, Text: "hello there world", Words: []retime.Word{
				{Word: "hello", Start: 0, End: 0.8},
				{Word: " there", Start: 0.9, End: 1.5},
				{Word: " world", Start: 1.6, End: 2.4},
			}},
			{Start: 2.6, End: 3.4, Text: "goodbye", Words: []retime.Word{
				{Word: "goodbye", Start: 2.6, End: 3.4},
			}},
		},
	}
	edited := "hello brave new world\ngoodbye"
	return doc, edited
}
