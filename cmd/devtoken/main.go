// Command devtoken prints a staff access token for local testing.  It reads
// JWT_SECRET and ACCESS_TOKEN_TTL_MIN from the environment or .env.
//
//	go run ./cmd/devtoken -hotel 1 -staff 42 -role MANAGER
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

func main() {
	hotel := flag.Uint64("hotel", 1, "hotel id the token acts for")
	staff := flag.Uint64("staff", 1, "staff id (sub claim)")
	role := flag.String("role", middleware.RoleStaff, "STAFF or MANAGER")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL_MIN or 60m)")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if *role != middleware.RoleStaff && *role != middleware.RoleManager {
		log.Fatalf("unknown role %q", *role)
	}
	if *ttl == 0 {
		*ttl = 60 * time.Minute
		if v, err := time.ParseDuration(os.Getenv("ACCESS_TOKEN_TTL_MIN") + "m"); err == nil && v > 0 {
			*ttl = v
		}
	}

	tok, err := utils.NewAccessToken(secret, utils.StaffClaims{StaffID: *staff, HotelID: *hotel, Role: *role}, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
