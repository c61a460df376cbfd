package main

import (
	"flag"
	"log"

	"centauridb/internal/app/engine"
)

func main() {
	dir := flag.String("dir", "centauridbdata", "database directory")
	flag.Parse()

	log.Println("starting centauridb...")

	e, err := engine.Open(engine.Config{Directory: *dir})
	if err != nil {
		log.Fatalf("cannot open engine: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Printf("error closing engine: %v", err)
		}
	}()

	t, err := e.NewTransaction()
	if err != nil {
		log.Fatalf("cannot start transaction: %v", err)
	}

	block, err := t.Append("testfile")
	if err != nil {
		log.Fatalf("cannot append block: %v", err)
	}
	if err := t.Pin(block); err != nil {
		log.Fatalf("cannot pin block: %v", err)
	}

	if err := t.SetInt(block, 80, 1); err != nil {
		log.Fatalf("cannot set int: %v", err)
	}
	if err := t.SetString(block, 40, "centauridb"); err != nil {
		log.Fatalf("cannot set string: %v", err)
	}

	if err := t.Commit(); err != nil {
		log.Fatalf("cannot commit transaction: %v", err)
	}

	log.Println("centauridb is ready")
}
