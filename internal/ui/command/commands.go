package command

// Info describes one palette command for the help overlay.
type Info struct {
	Usage string
	Desc  string
}

// Commands lists the palette commands the app understands.
var Commands = []Info{
	{"refresh", "sync every database now"},
	{"filter <status>", "show only issues in <status>"},
	{"clear", "drop the status filter and search"},
	{"notifications", "open unread status changes"},
	{"quit", "exit"},
}
