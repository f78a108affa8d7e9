// Command vaxadmin runs maintenance operations against a VaxiCare database
// file: facility migration, schema repair, full purge and demo seeding.
//
// Usage:
//
//	vaxadmin -db vaxicare.db migrate
//	vaxadmin -db vaxicare.db -yes purge
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vaxicare/vaxidata/internal/store"
)

func main() {
	dbPath := flag.String("db", "vaxicare.db", "path to the SQLite database file")
	yes := flag.Bool("yes", false, "confirm destructive commands (purge, repair)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	cmd := flag.Arg(0)

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	s, err := store.Open(*dbPath, log)
	if err != nil {
		log.Fatal("open database", zap.String("db", *dbPath), zap.Error(err))
	}
	defer s.Close()

	switch cmd {
	case "migrate":
		n, err := s.MigrateMisclassifiedFacilities()
		if err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		fmt.Printf("relocated %d account(s) to the facilities table\n", n)

	case "repair":
		if !*yes {
			fmt.Fprintln(os.Stderr, "repair drops all facility rows; re-run with -yes to confirm")
			os.Exit(2)
		}
		if err := s.RepairFacilityTable(); err != nil {
			log.Fatal("repair", zap.Error(err))
		}
		fmt.Println("facilities table rebuilt")

	case "purge":
		if !*yes {
			fmt.Fprintln(os.Stderr, "purge deletes all data; re-run with -yes to confirm")
			os.Exit(2)
		}
		if err := s.PurgeAll(); err != nil {
			log.Fatal("purge", zap.Error(err))
		}
		fmt.Println("all data purged")

	case "seed":
		if err := seed(s); err != nil {
			log.Fatal("seed", zap.Error(err))
		}
		fmt.Println("demo facilities seeded")

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
}

// seed inserts two demo facilities, skipping any whose email already exists.
func seed(s *store.Store) error {
	demo := []*store.Facility{
		{
			Name:     "Dhule Medical Center",
			Email:    "dhule.medical@vaxicare.local",
			Password: "demo1234",
			Location: "Dhule",
			Category: "Hospital",
			Vaccines: "MMR, Hepatitis B, Influenza, Polio",
		},
		{
			Name:     "Nashik Health Center",
			Email:    "nashik.health@vaxicare.local",
			Password: "demo1234",
			Location: "Nashik",
			Category: "Clinic",
			Vaccines: "MMR, Influenza, Covid-19",
		},
	}

	for _, f := range demo {
		existing, err := s.GetFacilityByEmail(f.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := s.InsertFacility(f); err != nil {
			return err
		}
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: vaxadmin [flags] <command>

Commands:
  migrate   move accounts whose names read like facilities into the facilities table
  repair    drop and recreate the facilities table (requires -yes)
  purge     delete every row from every table (requires -yes)
  seed      insert demo facilities

Flags:
`)
	flag.PrintDefaults()
}
