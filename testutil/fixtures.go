package testutil

// Backend payloads in the wire format of the analytics backend

// StartResponseJSON answers a first question with prose, a table and a
// follow-up suggestion
const StartResponseJSON = `{
  "conversation_id": "conv-123",
  "response": [
    {"type": "text", "content": "Revenue doubled between January and February."},
    {
      "type": "query",
      "description": "Revenue by month",
      "generated_code": "SELECT month AS Month, SUM(revenue) AS Revenue FROM sales GROUP BY month",
      "data": [
        {"Month": "2024-01", "Revenue": "1000"},
        {"Month": "2024-02", "Revenue": "2000"}
      ]
    },
    {"type": "text", "content": "Would you like to see revenue by region?"}
  ]
}`

// FollowupResponseJSON answers a follow-up with a pipe table in prose
const FollowupResponseJSON = `{
  "conversation_id": "conv-123",
  "response": [
    {"type": "text", "content": "| Region | Sales |\n|---|---|\n| East | 10 |\n| West | 20 |"},
    {"type": "attachment_v2", "content": "ignored"}
  ]
}`

// ContextsJSON lists two business contexts
const ContextsJSON = `[
  {"id": "downloads", "name": "Downloads & Engagement"},
  {"id": "homeloan", "name": "Home Loan"}
]`

// HealthJSON is the backend health reply
const HealthJSON = `{"message": "Jarvis Backend Running"}`
