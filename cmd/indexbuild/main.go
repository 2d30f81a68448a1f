// Command indexbuild bulk-loads a B+Tree secondary index from a flat
// relation file, or reopens an existing non-empty index file, and logs
// the index's name once it is ready.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sutrodb/bptree-index/bptree"
	"github.com/sutrodb/bptree-index/config"
	"github.com/sutrodb/bptree-index/logging"
	"github.com/sutrodb/bptree-index/storage/buffer"
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

func main() {
	var (
		configPath     = flag.String("config", "", "path to an INI config file")
		relationPath   = flag.String("relation", "", "path to the flat relation file to bulk-load from")
		relationName   = flag.String("relation-name", "", "relation name recorded in the index meta page")
		indexPath      = flag.String("index", "", "path to the index file to create, or to reopen if non-empty")
		attrOffset     = flag.Int("attr-offset", 0, "byte offset of the indexed attribute within a record")
		attrTypeName   = flag.String("attr-type", "int", "attribute type: int, double or string")
		recordSize     = flag.Int("record-size", 0, "fixed size, in bytes, of one relation record")
		recordsPerPage = flag.Int("records-per-page", 0, "fixed-size records stored per relation page")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}
	logging.Init(cfg.LogLevel)

	if *relationPath == "" || *relationName == "" || *indexPath == "" || *recordSize == 0 || *recordsPerPage == 0 {
		logrus.Fatal("relation, relation-name, index, record-size and records-per-page are all required")
	}

	attrType, err := parseAttrType(*attrTypeName)
	if err != nil {
		logrus.WithError(err).Fatal("bad attr-type")
	}

	scanner, err := relation.NewFileScanner(*relationPath, *recordSize, *recordsPerPage)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open relation file")
	}

	create := true
	indexFile, err := os.OpenFile(*indexPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open index file")
	}
	if info, statErr := indexFile.Stat(); statErr == nil && info.Size() > 0 {
		create = false
	}
	if err := indexFile.Truncate(int64(disk.DEFAULT_PAGE_CAPACITY) * disk.PAGE_SIZE); err != nil {
		logrus.WithError(err).Fatal("failed to size index file")
	}

	dm := disk.NewManager(indexFile)
	scheduler := disk.NewScheduler(dm)
	bpm := buffer.NewManager(cfg.BufferPoolFrames, cfg.LrukHistoryLen, scheduler)

	idx, err := bptree.Open(bpm, create, *relationName, int32(*attrOffset), attrType, scanner)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open index")
	}
	defer idx.Close()

	logrus.WithField("index", idx.Name()).Info("index ready")
}

func parseAttrType(name string) (bptree.AttrType, error) {
	switch name {
	case "int":
		return bptree.AttrInt, nil
	case "double":
		return bptree.AttrDouble, nil
	case "string":
		return bptree.AttrString, nil
	default:
		return 0, fmt.Errorf("unknown attr-type %q", name)
	}
}
