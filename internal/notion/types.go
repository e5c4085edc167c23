package notion

import "encoding/json"

// Properties is the raw property map of a page, keyed by display name. Values
// are kept undecoded so the map can be handed out verbatim.
type Properties map[string]json.RawMessage

// Page is the envelope returned by GET /pages/{id} and by database queries.
type Page struct {
	Object         string     `json:"object"`
	ID             string     `json:"id"`
	URL            string     `json:"url"`
	Archived       bool       `json:"archived"`
	CreatedTime    string     `json:"created_time"`
	LastEditedTime string     `json:"last_edited_time"`
	Properties     Properties `json:"properties"`
}

// RichText is a single run of a title or rich_text property.
type RichText struct {
	Type      string `json:"type,omitempty"`
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// SelectOption is the value of a select, status or multi_select property.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// PropertyValue is the decoded form of a single page property. Only the
// shapes this package reads are modelled.
type PropertyValue struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       []RichText     `json:"title"`
	RichText    []RichText     `json:"rich_text"`
	Select      *SelectOption  `json:"select"`
	Status      *SelectOption  `json:"status"`
	MultiSelect []SelectOption `json:"multi_select"`
}

// Database is the response from GET /databases/{id}.
type Database struct {
	Object     string                    `json:"object"`
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	URL        string                    `json:"url"`
	Properties map[string]SchemaProperty `json:"properties"`
}

// SchemaProperty is one declared property of a database.
type SchemaProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Condition is the comparison inside a typed filter clause.
type Condition struct {
	Equals   string `json:"equals,omitempty"`
	Contains string `json:"contains,omitempty"`
}

// Filter is a database query predicate: either one property condition or an
// "or" of conditions.
type Filter struct {
	Property    string     `json:"property,omitempty"`
	Status      *Condition `json:"status,omitempty"`
	Select      *Condition `json:"select,omitempty"`
	MultiSelect *Condition `json:"multi_select,omitempty"`
	Or          []Filter   `json:"or,omitempty"`
}

// QueryRequest is the body of POST /databases/{id}/query.
type QueryRequest struct {
	PageSize    int     `json:"page_size"`
	StartCursor string  `json:"start_cursor,omitempty"`
	Filter      *Filter `json:"filter,omitempty"`
}

// QueryResponse is one page of database query results.
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// OptionRef names an option when writing a select or status property.
type OptionRef struct {
	Name string `json:"name"`
}

// PropertyPatch is the new value of one property in a page update.
type PropertyPatch struct {
	Status *OptionRef `json:"status,omitempty"`
	Select *OptionRef `json:"select,omitempty"`
}

// PageUpdate is the body of PATCH /pages/{id}.
type PageUpdate struct {
	Properties map[string]PropertyPatch `json:"properties"`
}

// TextContent is the content of an outgoing text run.
type TextContent struct {
	Content string `json:"content"`
}

// TextInput is an outgoing rich text run.
type TextInput struct {
	Type string      `json:"type"`
	Text TextContent `json:"text"`
}

// CommentParent identifies the page a comment is attached to.
type CommentParent struct {
	PageID string `json:"page_id"`
}

// CommentRequest is the body of POST /comments.
type CommentRequest struct {
	Parent   CommentParent `json:"parent"`
	RichText []TextInput   `json:"rich_text"`
}

// Comment is the acknowledgement returned by POST /comments.
type Comment struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

// User is the response from GET /users/me.
type User struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// ErrorResponse is the standard Notion error body.
type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
