package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

func main() {
	hostsStr := os.Getenv("SCYLLA_HOSTS")
	if hostsStr == "" {
		hostsStr = "localhost:9042"
	}

	cluster := gocql.NewCluster(strings.Split(hostsStr, ",")...)
	cluster.Keyspace = "chat"
	cluster.Timeout = 5 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	log.Println("Dropping table messages...")
	if err := session.Query("DROP TABLE IF EXISTS messages").Exec(); err != nil {
		log.Fatalf("Failed to drop table: %v", err)
	}
	log.Println("Table dropped successfully.")
}
