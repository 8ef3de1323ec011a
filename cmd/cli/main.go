package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
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
	case "task":
		handleTask(args)
	case "profile":
		handleProfile(args)
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
		fmt.Println("Usage: taskboard auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskboard task <list|create|get|update|assign|unassign|delete|analytics>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listTasks(args[1:])
	case "create":
		createTask(args[1:])
	case "get":
		getTask(args[1:])
	case "update":
		updateTask(args[1:])
	case "assign":
		assignTask(args[1:])
	case "unassign":
		unassignTask(args[1:])
	case "delete":
		deleteTask(args[1:])
	case "analytics":
		taskAnalytics(args[1:])
	default:
		fmt.Printf("unknown task command: %s\n", subCmd)
	}
}

func handleProfile(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskboard profile <list|get|assign-manager>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listProfiles(args[1:])
	case "get":
		getProfile(args[1:])
	case "assign-manager":
		assignManager(args[1:])
	default:
		fmt.Printf("unknown profile command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	role := fs.String("role", "user", "role (admin, manager, user)")
	manager := fs.String("manager", "", "manager ID (optional, users only)")

	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("Error: email, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"username": *username,
		"password": *password,
		"role":     *role,
	}
	if *manager != "" {
		payload["managerId"] = *manager
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s (id: %v)\n", *email, result["id"])
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

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
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
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
	req, _ := http.NewRequest("POST", getAPIURL()+"/auth/logout", nil)
	addAuthHeader(req)
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
	}
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Task commands
func listTasks(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	priority := fs.String("priority", "", "filter by priority")
	dueDate := fs.String("due", "", "filter by due date (DD/MM/YYYY)")
	sort := fs.String("sort", "", "sort order (asc or desc)")

	fs.Parse(args)

	url := getAPIURL() + "/tasks?"
	if *status != "" {
		url += "status=" + *status + "&"
	}
	if *priority != "" {
		url += "priority=" + *priority + "&"
	}
	if *dueDate != "" {
		url += "dueDate=" + *dueDate + "&"
	}
	if *sort != "" {
		url += "sort=" + *sort
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
		printAPIError(resp)
		return
	}

	var tasks []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&tasks)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNED TO")
	for _, task := range tasks {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			task["id"], task["title"], task["status"], task["priority"], task["dueDate"], task["assignedTo"])
	}
	w.Flush()
}

func createTask(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "task description")
	dueDate := fs.String("due", "", "due date (DD/MM/YYYY)")
	priority := fs.String("priority", "", "priority (low, medium, high)")
	assignTo := fs.String("assign", "", "assignee user ID (optional)")

	fs.Parse(args)

	if *title == "" || *dueDate == "" {
		fmt.Println("Error: title and due date are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"title":       *title,
		"description": *description,
		"dueDate":     *dueDate,
	}
	if *priority != "" {
		payload["priority"] = *priority
	}
	if *assignTo != "" {
		payload["assignedTo"] = *assignTo
	}

	result, ok := postJSON("/tasks", payload, 201)
	if ok {
		fmt.Printf("✓ Task created: %v\n", result["id"])
	}
}

func getTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskboard task get <task-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/tasks/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var task map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&task)
	pretty, _ := json.MarshalIndent(task, "", "  ")
	fmt.Println(string(pretty))
}

func updateTask(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "task ID")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	dueDate := fs.String("due", "", "new due date (DD/MM/YYYY)")
	priority := fs.String("priority", "", "new priority")
	status := fs.String("status", "", "new status")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: task ID is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{}
	for key, value := range map[string]*string{
		"title": title, "description": description, "dueDate": dueDate,
		"priority": priority, "status": status,
	} {
		if *value != "" {
			payload[key] = *value
		}
	}
	if len(payload) == 0 {
		fmt.Println("Error: nothing to update")
		return
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PUT", getAPIURL()+"/tasks/"+*id, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}
	fmt.Println("✓ Task updated")
}

func assignTask(args []string) {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	id := fs.String("id", "", "task ID")
	user := fs.String("user", "", "assignee user ID")

	fs.Parse(args)

	if *id == "" || *user == "" {
		fmt.Println("Error: task ID and user ID are required")
		fs.PrintDefaults()
		return
	}

	if _, ok := postJSON("/tasks/"+*id+"/assign", map[string]string{"userId": *user}, 200); ok {
		fmt.Printf("✓ Task %s assigned to %s\n", *id, *user)
	}
}

func unassignTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskboard task unassign <task-id>")
		return
	}

	if _, ok := postJSON("/tasks/"+args[0]+"/unassign", map[string]string{}, 200); ok {
		fmt.Printf("✓ Task %s unassigned\n", args[0])
	}
}

func deleteTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskboard task delete <task-id>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/tasks/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}
	fmt.Printf("✓ Task %s deleted\n", args[0])
}

func taskAnalytics(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/tasks/analytics", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var analytics map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&analytics)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL\tPENDING\tIN PROGRESS\tCOMPLETED\tOVERDUE")
	fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
		analytics["totalTasks"], analytics["pendingTasks"], analytics["inProgressTasks"],
		analytics["completedTasks"], analytics["overdueTasks"])
	w.Flush()
}

// Profile commands
func listProfiles(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/profiles", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var users []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&users)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tMANAGER")
	for _, u := range users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			u["id"], u["username"], u["email"], u["role"], u["managerId"])
	}
	w.Flush()
}

func getProfile(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskboard profile get <user-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/profiles/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var user map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&user)
	pretty, _ := json.MarshalIndent(user, "", "  ")
	fmt.Println(string(pretty))
}

func assignManager(args []string) {
	fs := flag.NewFlagSet("assign-manager", flag.ExitOnError)
	user := fs.String("user", "", "user ID")
	manager := fs.String("manager", "", "manager ID")

	fs.Parse(args)

	if *user == "" || *manager == "" {
		fmt.Println("Error: user ID and manager ID are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"userId": *user, "managerId": *manager}
	if _, ok := postJSON("/auth/assign-manager", payload, 200); ok {
		fmt.Printf("✓ Manager %s assigned to %s\n", *manager, *user)
	}
}

// Helper functions
func postJSON(path string, payload map[string]string, wantStatus int) (map[string]interface{}, bool) {
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != wantStatus {
		fmt.Printf("✗ Request failed: %v\n", result)
		return result, false
	}
	return result, true
}

func printAPIError(resp *http.Response) {
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✗ Request failed (%d): %v\n", resp.StatusCode, result)
}

func getAPIURL() string {
	if url := os.Getenv("TASKBOARD_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.taskboard/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.taskboard", 0700)
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
	fmt.Print(`Taskboard CLI

Usage:
  taskboard <command> [options]

Commands:
  auth     User authentication (register, login, logout, who)
  task     Task operations (list, create, get, update, assign, unassign, delete, analytics)
  profile  Profile operations (list, get, assign-manager)
  help     Show this help message

Environment Variables:
  TASKBOARD_API    API endpoint (default: http://localhost:8080/api)

Examples:
  taskboard auth register -email admin@example.com -username admin -password pass -role admin
  taskboard auth login -email admin@example.com -password pass
  taskboard task create -title "Ship release" -due 15/09/2026 -priority high
  taskboard task list -status pending -sort desc
`)
}
