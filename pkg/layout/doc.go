// Copyright © 2018 One Concern

/*
Package layout manages the on-disk skeleton of a repository.

A repository is a working directory holding a metadata directory:

	<root>/.gitlib/
	  HEAD            symbolic reference to the current branch
	  config          INI settings: object format, compression
	  description
	  objects/        content-addressable object store
	  refs/heads/
	  refs/tags/

Init builds the skeleton in a uniquely named staging directory, then renames it into place:
the metadata directory is either absent or complete, never partially written.
*/
package layout
