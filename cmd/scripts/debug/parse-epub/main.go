package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/epub"
)

func main() {
	log := logger.New()

	var opts struct {
		CoverOutput string `short:"o" long:"cover-output" description:"A path to output the cover image"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/parse-epub <path/to/file.epub>")
		os.Exit(1)
	}

	metadata, err := epub.Parse(args[0])
	if err != nil {
		log.Err(err).Fatal("epub parse error")
	}
	index := "-"
	if metadata.SeriesIndex != nil {
		index = fmt.Sprint(*metadata.SeriesIndex)
	}
	fmt.Printf("Title: %s\nAuthor(s): %v\nSeries: %s (%s)\nCover: %s\nLanguage: %s\n",
		metadata.Title, metadata.Authors, metadata.Series, index, metadata.CoverPath, metadata.Language)

	if opts.CoverOutput == "" || metadata.CoverPath == "" {
		return
	}

	zr, err := zip.OpenReader(args[0])
	if err != nil {
		log.Err(err).Fatal("open epub error")
	}
	defer zr.Close()

	rc, err := zr.Open(metadata.CoverPath)
	if err != nil {
		log.Err(err).Fatal("open cover error")
	}
	defer rc.Close()

	f, err := os.Create(opts.CoverOutput)
	if err != nil {
		log.Err(err).Fatal("create file error")
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		log.Err(err).Fatal("file write error")
	}
}
