package main

import (
	"context"

	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Config  string `cli:"name=config desc='configuration file (default decotree.yaml)'"`
	Name    string `cli:"name=name desc='snapshot name'"`
	Driver  string `cli:"name=driver desc='snapshot driver: memory, fs, s3, sqlite or postgres'"`
	Verbose bool   `cli:"name=v aliases=verbose desc='log at debug level'"`

	Main *cli.Command

	ctx    context.Context
	getenv func(string) string
}

type ImportConfig struct {
	*MainConfig
	Import *cli.Command

	Keys  string `cli:"name=keys desc='comma separated properties to keep (default all)'"`
	Stats bool   `cli:"name=stats desc='print hook event counts'"`
}

type ShowConfig struct {
	*MainConfig
	Show *cli.Command

	Version int  `cli:"name=version desc='version to show (default latest)'"`
	JSON    bool `cli:"name=json desc='print the stored document'"`
	Stats   bool `cli:"name=stats desc='print hook event counts'"`
}

type FindConfig struct {
	*MainConfig
	Find *cli.Command

	Version int `cli:"name=version desc='version to search (default latest)'"`
}

type VersionsConfig struct {
	*MainConfig
	Versions *cli.Command
}

type NamesConfig struct {
	*MainConfig
	Names *cli.Command
}

type DeleteConfig struct {
	*MainConfig
	Delete *cli.Command
}
