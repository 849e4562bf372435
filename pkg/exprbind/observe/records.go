package observe

// RecordType classifies a ChangeRecord.
type RecordType string

// Change record types.
const (
	RecordSplice RecordType = "splice"
	RecordAdd    RecordType = "add"
	RecordUpdate RecordType = "update"
	RecordDelete RecordType = "delete"
	RecordClear  RecordType = "clear"
)

// ChangeRecord is a raw mutation reported by an observable collection.
//
// Array records use Index; splice records also carry Removed and
// AddedCount. Map records use Key and OldValue. Set records carry the member
// in Key.
type ChangeRecord struct {
	Type       RecordType
	Index      int
	Removed    []any
	AddedCount int
	Key        any
	OldValue   any
}
