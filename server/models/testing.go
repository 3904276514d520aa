package models

// InitializeTestStore opens a throwaway encrypted db under 'dir'
// & migrates the schema - for use in tests only
func InitializeTestStore(dir string) (*Store, error) {
	db, err := Open("test-pass-phrase", dir)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return NewStore(db), nil
}
