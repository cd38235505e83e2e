package routes

import (
	"fmt"
	"net/http"
)

// PrivacyPolicyHandler serves the Privacy Policy content
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Event Friend Privacy Policy</title>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<p>Event Friend stores your profile, the events you join and the people you show interest in so we can match you with other attendees.</p>
		<p>Interests are only revealed to the other person when they are mutual. Unmatching deletes the chat for both of you.</p>
		<p>Profile images are stored in our object storage and served through a public URL.</p>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
