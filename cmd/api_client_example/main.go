package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the weather lookup server")
	city := flag.String("city", "Curitiba", "City to search for")
	flag.Parse()

	fmt.Println("Weather Lookup API Client Example")
	fmt.Println("=================================")

	client := &http.Client{Timeout: 30 * time.Second}

	// Edit the query, then search explicitly instead of waiting for the quiet period
	fmt.Printf("\nSetting query to %q...\n", *city)
	query, _ := json.Marshal(map[string]string{"query": *city})
	if _, err := call(client, http.MethodPut, *baseURL+"/api/query", query); err != nil {
		fmt.Printf("Error setting query: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Searching...")
	state, err := call(client, http.MethodPost, *baseURL+"/api/search", nil)
	if err != nil {
		fmt.Printf("Error searching: %v\n", err)
		os.Exit(1)
	}
	printJSON("Search result", state)

	history, err := call(client, http.MethodGet, *baseURL+"/api/history", nil)
	if err != nil {
		fmt.Printf("Error fetching history: %v\n", err)
		os.Exit(1)
	}
	printJSON("Recent searches", history)

	// Replaying the newest entry reuses its coordinates
	fmt.Println("\nReplaying the most recent search...")
	state, err = call(client, http.MethodPost, *baseURL+"/api/history/replay", []byte(`{"index":0}`))
	if err != nil {
		fmt.Printf("Error replaying: %v\n", err)
		os.Exit(1)
	}
	printJSON("Replay result", state)
}

func call(client *http.Client, method, url string, body []byte) (map[string]interface{}, error) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func printJSON(title string, v interface{}) {
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("\n%s:\n%s\n", title, string(pretty))
}
