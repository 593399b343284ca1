// Package ameblodoc converts Ameba blog ("ameblo") entries into standalone
// word-processor documents. It fetches entry and list pages, extracts each
// article into an Entry made of ordered text and image blocks, and renders
// every entry as its own .docx file.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, docx/, rod/).
package ameblodoc
