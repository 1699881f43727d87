package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "shortage":
		handleShortage(args)
	case "report":
		handleReport(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: visulab auth <login|logout|who>")
		return
	}

	switch args[0] {
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleShortage(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: visulab shortage <list|add>")
		return
	}

	switch args[0] {
	case "list":
		listShortages(args[1:])
	case "add":
		addShortage(args[1:])
	default:
		fmt.Printf("unknown shortage command: %s\n", args[0])
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: visulab admin <users|companies>")
		return
	}

	switch args[0] {
	case "users":
		listUsers(args[1:])
	case "companies":
		listCompanies(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", args[0])
	}
}

// Auth commands
func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", tokenPreview(token))
}

// tokenPreview truncates a token for display; short or corrupt token
// files print as-is.
func tokenPreview(token string) string {
	if len(token) > 20 {
		return token[:20]
	}
	return token
}

// Shortage commands
func listShortages(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	company := fs.String("company", "", "company ID (admin only)")
	fs.Parse(args)

	url := getAPIURL() + "/shortages"
	if *company != "" {
		url += "?company_id=" + *company
	}
	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var payload struct {
		Records []map[string]interface{} `json:"records"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINDEX\tTYPE\tTREATMENT\tSPHERE\tCYLINDER\tQTY\tREGISTERED")
	for _, r := range payload.Records {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
			r["id"], r["lensIndex"], r["lensType"], r["treatment"],
			r["sphere"], r["cylinder"], r["quantity"], r["registeredAt"])
	}
	w.Flush()
}

func addShortage(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	index := fs.String("index", "", "lens index (e.g. 1.56)")
	lensType := fs.String("type", "Colorless", "lens type")
	treatment := fs.String("treatment", "", "treatment")
	sphere := fs.String("sphere", "", "sphere diopter")
	cylinder := fs.String("cylinder", "", "cylinder diopter")
	quantity := fs.Int("qty", 1, "quantity of missing pieces")
	fs.Parse(args)

	if *index == "" || *treatment == "" {
		fmt.Println("Error: index and treatment are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"lens_index": *index,
		"lens_type":  *lensType,
		"treatment":  *treatment,
		"sphere":     *sphere,
		"cylinder":   *cylinder,
		"quantity":   *quantity,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/shortages", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Record created: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

// Report command downloads the text report to the working directory
func handleReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	company := fs.String("company", "", "company ID (admin only)")
	out := fs.String("out", "", "output file (default: server-provided name)")
	fs.Parse(args)

	url := getAPIURL() + "/reports/shortages?"
	if *from != "" {
		url += "date_from=" + *from + "&"
	}
	if *to != "" {
		url += "date_to=" + *to + "&"
	}
	if *company != "" {
		url += "company_id=" + *company
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Report failed: %v\n", result)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	filename := *out
	if filename == "" {
		filename = "shortage_report.txt"
		if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
			if name, ok := params["filename"]; ok && name != "" {
				filename = name
			}
		}
	}
	if err := os.WriteFile(filename, body, 0644); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("✓ Report saved: %s\n", filename)
}

// Admin commands
func listUsers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/users", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var payload struct {
		Users []map[string]interface{} `json:"users"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCOMPANY\tACTIVE")
	for _, u := range payload.Users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			u["id"], u["email"], u["fullName"], u["role"], u["companyId"], u["active"])
	}
	w.Flush()
}

func listCompanies(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/companies", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var payload struct {
		Companies []map[string]interface{} `json:"companies"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE")
	for _, c := range payload.Companies {
		fmt.Fprintf(w, "%v\t%v\t%v\n", c["id"], c["name"], c["active"])
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("VISULAB_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.visulab/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.visulab", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`VisuLab CLI

Usage:
  visulab <command> [options]

Commands:
  auth       User authentication (login, logout, who)
  shortage   Shortage records (list, add)
  report     Download the text shortage report
  admin      Admin operations (users, companies) - admin access required
  help       Show this help message

Environment Variables:
  VISULAB_API    API endpoint (default: http://localhost:8080/api)

Examples:
  visulab auth login -email user@example.com -password pass
  visulab shortage add -index 1.56 -treatment AR -sphere +2.00 -cylinder -1.00 -qty 3
  visulab shortage list
  visulab report -from 2024-01-01 -to 2024-03-31
`)
}
