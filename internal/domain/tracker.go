package domain

// User is an account that exercises are logged against. IDs are
// assigned by the store and never change.
type User struct {
	ID       int64
	Username string
}

// Exercise is a single logged workout owned by a user. Date is kept in
// YYYY-MM-DD form so range filters compare lexicographically.
type Exercise struct {
	ID          int64
	UserID      int64
	Description string
	Duration    int
	Date        string
}

// LogFilter narrows a user's exercise log. From and To are inclusive
// YYYY-MM-DD bounds; empty means unbounded. Limit caps the number of
// rows when positive and is pushed into the query.
type LogFilter struct {
	From  string
	To    string
	Limit int
}

// Log is a user's filtered exercise history. Count always equals
// len(Exercises), after any limit is applied.
type Log struct {
	User      User
	Exercises []Exercise
	Count     int
}
