package tracing

import "github.com/sarchlab/centsim/datarecording"

// accessTableName is the table DBTracer writes access rows into.
const accessTableName = "reg_access"

type accessTableEntry struct {
	Time    int64
	PC      uint16
	Addr    uint16
	Value   uint8
	Device  string
	Write   bool
	Unknown bool
}

// A DBTracer stores register accesses through a DataRecorder so a trace can
// be queried after the run.
type DBTracer struct {
	backend datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and prepares its table in the backend.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{backend: backend}
	t.backend.CreateTable(accessTableName, accessTableEntry{})

	return t
}

// RecordAccess buffers the access for insertion.
func (t *DBTracer) RecordAccess(rec AccessRecord) {
	t.backend.InsertData(accessTableName, accessTableEntry{
		Time:    int64(rec.Time),
		PC:      rec.PC,
		Addr:    rec.Addr,
		Value:   rec.Value,
		Device:  rec.Device,
		Write:   rec.Write,
		Unknown: rec.Unknown,
	})
}

// Flush forces buffered accesses into the database.
func (t *DBTracer) Flush() {
	t.backend.Flush()
}
