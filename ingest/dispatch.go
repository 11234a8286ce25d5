package ingest

// Dispatch chooses an ingestor variant for a source descriptor using the
// order specified in the external interface contract: VCS URL, then
// archive path, with fallback to local directory.
func Dispatch(descriptor string, vcsOpts VCSOptions, archiveOpts ArchiveOptions) (*Result, Cleanup) {
	switch {
	case IsVCSURL(descriptor):
		return VCS(descriptor, vcsOpts)
	case IsArchivePath(descriptor):
		return Archive(descriptor, archiveOpts)
	default:
		return Local(descriptor)
	}
}
