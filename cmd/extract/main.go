// Command extract dumps the text the extractor sees in a datasheet and the
// parameters it finds. It is a debugging aid for new datasheet layouts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"Plant3D/internal/extractor"
	"Plant3D/internal/logging"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: extract <datasheet.pdf|.xlsx|.txt>")
		os.Exit(2)
	}
	path := os.Args[1]

	logger, err := logging.New("debug", true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	text, err := extractor.ReadText(ctx, path)
	if err != nil {
		logger.Fatal("read datasheet", zap.String("path", path), zap.Error(err))
	}
	for i, line := range strings.Split(text, "\n") {
		fmt.Printf("%4d | %s\n", i+1, line)
	}

	res := extractor.New(logger).Extract(text)
	fmt.Println()
	fmt.Println(res.Params.Summary())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Fatal("encode result", zap.Error(err))
	}
}
