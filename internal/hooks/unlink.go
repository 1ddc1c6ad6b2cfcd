package hooks

import (
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/stall"
)

// FileType distinguishes what a path resolved to at hook time, for the
// UNLINK/RMDIR/RENAME filter.
type FileType int

const (
	FileRegular FileType = iota
	FileDir
	FileSymlink
	FileOther
)

func interestingFileType(t FileType) bool {
	return t == FileRegular || t == FileDir || t == FileSymlink
}

// Unlink adapts an UNLINK or RMDIR hook call. kind distinguishes the
// two (they share a payload shape); isDir/hookID are forwarded to the
// Factory. Targets that are not a regular file, directory, or symlink
// are dropped before any allocation (step 2).
func (a *Adapter) Unlink(tid, pgid uint32, kind event.Kind, hookID uint16, ft FileType, path []byte, isDir bool, taskDone <-chan struct{}) (stall.Verdict, error) {
	if !interestingFileType(ft) {
		return stall.VerdictAllow, nil
	}
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     kind,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Unlink(tid, kind, hookID, flags, path, isDir)
		},
	})
}

// Rename adapts a RENAME hook call, applying the same file-type filter
// as Unlink.
func (a *Adapter) Rename(tid, pgid uint32, hookID uint16, ft FileType, oldPath, newPath []byte, taskDone <-chan struct{}) (stall.Verdict, error) {
	if !interestingFileType(ft) {
		return stall.VerdictAllow, nil
	}
	return a.Run(Decision{
		TID:      tid,
		PGID:     pgid,
		Kind:     event.Rename,
		HookID:   hookID,
		Priority: event.NormalPriority,
		TaskDone: taskDone,
		Build: func(flags event.ReportFlag) (*event.Event, bool) {
			return a.Factory.Rename(tid, hookID, flags, oldPath, newPath)
		},
	})
}
