package store

type User struct {
	ID           int32
	Username     string
	PasswordHash string
	CreatedTs    int64
}

type FindUser struct {
	ID       *int32
	Username *string
}
