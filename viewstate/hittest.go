package viewstate

// HitTestResult locates a screen cell within the conversation.
type HitTestResult struct {
	Index       EntryIndex
	Line        LineOffset // absolute line
	LineInEntry int
	Column      int
}
