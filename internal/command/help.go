package command

// HelpText is printed for help and for any line that fails to parse.
const HelpText = `
Usage:
  add <note|task> [text]          - Add a note or task (prompts for details).
  list [all|today|tomorrow]       - List active records, or tasks due that day.
  list tags <label>               - List records carrying a tag.
  list prio <low|medium|high>     - List tasks with a priority.
  list trash                      - List trashed records.
  edit <note|task> <id>           - Edit a record.
  open <note|task> <id>           - Show a record in full.
  rm <note|task> <id>             - Move a record to the trash.
  restore <note|task> <id>        - Restore a record from the trash.
  del <note|task> <id>            - Permanently delete a trashed record.
  search <keyword>                - Search active records.
  help                            - Print this help message.
  quit                            - Quit Daisho.
`
