// Exercises the REST surface end to end against a running server: post a
// message, fetch history, delete the message, delete it again (expect 404).
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

func main() {
	apiAddr := "http://localhost:5000"

	// 1. Post a message
	reqBody, _ := json.Marshal(map[string]string{
		"username": "verify_api",
		"message":  "hello from verify_api",
	})
	resp, err := http.Post(apiAddr+"/api/messages", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("POST status=%d id=%d\n", resp.StatusCode, created.ID)

	// 2. Fetch history
	resp, err = http.Get(apiAddr + "/api/messages")
	if err != nil {
		log.Fatal("history request failed:", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Printf("History: %s", string(body))

	// 3. Delete the message, twice
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/messages/%d", apiAddr, created.ID), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatal("delete request failed:", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("DELETE #%d status=%d body=%s", i+1, resp.StatusCode, body)
	}
}
