package datastore

import (
	"fmt"
)

type DatastoreFactory struct{}

func (f *DatastoreFactory) New(config *Config) (Datastore, error) {
	switch config.Type {
	case SQLite:
		return NewSQLiteDatastore(config)
	default:
		return nil, fmt.Errorf("not support db type=%s", config.Type)
	}
}

func (f *DatastoreFactory) NewTable(dbType DatastoreType, dbName, tableName string) (Datastore, error) {
	switch dbType {
	case SQLite:
		cfg, err := NewSQLiteConfig(dbName, tableName)
		if err != nil {
			return nil, err
		}
		return NewSQLiteDatastore(cfg)
	default:
		return nil, fmt.Errorf("not support db type=%s", dbType)
	}
}

func NewSQLiteConfig(dbName, tableName string) (*Config, error) {
	config := &Config{
		Type:      SQLite,
		DBName:    dbName,
		TableName: tableName,
	}
	switch tableName {
	case KJobTableName:
		config.ColumnConfig = map[string]string{
			KJobIdColumnName: "TEXT PRIMARY KEY NOT NULL",
			KJobImage:        "TEXT",
			KJobSlicer:       "TEXT",
			KJobDryRun:       "INT",
			KJobConfig:       "TEXT",
			KJobStatus:       "TEXT",
			KJobMessage:      "TEXT",
			KJobCreateTime:   "INT",
			KJobModifyTime:   "INT",
		}
		config.PrimaryKeyColumnName = KJobIdColumnName
	default:
		return nil, fmt.Errorf("unknown table=%s", tableName)
	}
	return config, nil
}
