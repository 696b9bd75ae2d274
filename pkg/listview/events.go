package listview

import (
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/journal"
)

// Event is an input to Update.
type Event interface{ event() }

type (
	// SelectTab switches tab. Today is the current civil date.
	SelectTab struct {
		Tab   Tab
		Today entry.Date
	}
	// SetDate sets the picker. Ignored outside the date tab.
	SetDate struct{ Date entry.Date }
	// ShiftDate moves the picker by Days. Ignored outside the date tab.
	ShiftDate struct{ Days int }
	Refresh   struct{}

	ToggleBatch  struct{}
	ToggleSelect struct{ ID int64 }
	SelectAll    struct{}
	DeselectAll  struct{}

	Loaded struct {
		Seq  uint64
		Page *entry.Page
	}
	LoadFailed struct {
		Seq uint64
		Err error
	}

	ExportSelected struct{}
	ExportOne      struct{ ID int64 }
	Exported       struct{ URL string }
	ExportFailed   struct{ Err error }

	// HandoffResult reports whether the other app appeared to open.
	HandoffResult struct{ OK bool }

	SyncOne struct{ ID int64 }
	SyncAll struct{}
	// Synced carries the result of a sync. One is set for a single entry,
	// All for a sync-all run.
	Synced struct {
		One *entry.EntrySyncResult
		All *entry.SyncResult
	}
	SyncFailed  struct{ Err error }
	ClearStatus struct{}
)

func (SelectTab) event()      {}
func (SetDate) event()        {}
func (ShiftDate) event()      {}
func (Refresh) event()        {}
func (ToggleBatch) event()    {}
func (ToggleSelect) event()   {}
func (SelectAll) event()      {}
func (DeselectAll) event()    {}
func (Loaded) event()         {}
func (LoadFailed) event()     {}
func (ExportSelected) event() {}
func (ExportOne) event()      {}
func (Exported) event()       {}
func (ExportFailed) event()   {}
func (HandoffResult) event()  {}
func (SyncOne) event()        {}
func (SyncAll) event()        {}
func (Synced) event()         {}
func (SyncFailed) event()     {}
func (ClearStatus) event()    {}

// Command is an effect for the host to run.
type Command interface{ command() }

type (
	// Fetch lists entries. Its result must come back tagged with Seq.
	Fetch struct {
		Seq     uint64
		Query   Query
		Options journal.ListOptions
	}
	// Export asks for a notes export of IDs, in order. Batch exports go to
	// the batch endpoint even when only one entry is selected.
	Export struct {
		IDs   []int64
		Batch bool
	}
	// OpenURL hands a URL to the native bridge.
	OpenURL struct{ URL string }
	// Sync pushes one entry, or all entries when ID is zero.
	Sync struct{ ID int64 }
	// Alert shows a message to the user.
	Alert struct{ Message string }
)

func (Fetch) command()   {}
func (Export) command()  {}
func (OpenURL) command() {}
func (Sync) command()    {}
func (Alert) command()   {}
