package explorer

// Loading messages shown while each operation is in flight.
const (
	MsgExploring  = "Exploring repository..."
	MsgFetching   = "Fetching file..."
	MsgConverting = "Converting code..."
)

// NoFilesPlaceholder replaces the file list when a repository has no files.
const NoFilesPlaceholder = "No files found"

// Phase is the position of a session in the explore/fetch/convert flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExploring
	PhaseFileListShown
	PhaseFetchingFile
	PhaseFileShown
	PhaseConverting
	PhaseConverted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExploring:
		return "exploring"
	case PhaseFileListShown:
		return "file list shown"
	case PhaseFetchingFile:
		return "fetching file"
	case PhaseFileShown:
		return "file shown"
	case PhaseConverting:
		return "converting"
	case PhaseConverted:
		return "converted"
	default:
		return "unknown"
	}
}

// FileEntry is one row of the file list.
type FileEntry struct {
	Path     string
	Selected bool
}

// View is everything a front-end needs to draw the explorer. It is a
// projection of controller state and holds no behaviour.
type View struct {
	Phase          Phase
	RepoURL        string
	Files          []FileEntry
	Placeholder    string
	Source         string
	SourceLabel    string
	Converted      string
	TargetLabel    string
	ConvertVisible bool
	Loading        bool
	LoadingMessage string
	Error          string
}

// Selected returns the highlighted file path, if any.
func (v View) Selected() (string, bool) {
	for _, f := range v.Files {
		if f.Selected {
			return f.Path, true
		}
	}
	return "", false
}

// LanguageLabel formats the label shown above a code pane.
func LanguageLabel(lang string) string {
	return "Language: " + lang
}

func (v View) clone() View {
	out := v
	if v.Files != nil {
		out.Files = append([]FileEntry(nil), v.Files...)
	}
	return out
}
