package main

import (
	"fmt"
)

func completionCmd(args []string) int {
	fs := newFlagSet("completion")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash completion <bash|zsh|fish>\n\n")
		fmt.Fprintf(stderr, "Generate shell completion scripts.\n\n")
		fmt.Fprintf(stderr, "Examples:\n")
		fmt.Fprintf(stderr, "  # Bash\n")
		fmt.Fprintf(stderr, "  jsonstash completion bash > /usr/local/etc/bash_completion.d/jsonstash\n")
		fmt.Fprintf(stderr, "  # Zsh\n")
		fmt.Fprintf(stderr, "  jsonstash completion zsh > \"${fpath[1]}/_jsonstash\"\n")
		fmt.Fprintf(stderr, "  # Fish\n")
		fmt.Fprintf(stderr, "  jsonstash completion fish > ~/.config/fish/completions/jsonstash.fish\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) < 1 {
		return usageError(fs, "shell name is required (bash, zsh, or fish)")
	}

	switch shell := pos[0]; shell {
	case "bash":
		fmt.Fprint(stdout, generateBashCompletion())
	case "zsh":
		fmt.Fprint(stdout, generateZshCompletion())
	case "fish":
		fmt.Fprint(stdout, generateFishCompletion())
	default:
		return fail("unsupported shell %q (use bash, zsh, or fish)", shell)
	}
	return 0
}

func generateBashCompletion() string {
	return `# bash completion for jsonstash                          -*- shell-script -*-

_jsonstash() {
    local cur prev words cword
    _init_completion || return

    local commands="add list show remove flush serve import export completion version help"

    local common_flags="--config --data-path --bucket --log-level"
    local add_flags="--file --proxy ${common_flags}"
    local list_flags="--match --search --output ${common_flags}"
    local show_flags="--raw --no-color ${common_flags}"
    local remove_flags="${common_flags}"
    local flush_flags="--yes ${common_flags}"
    local serve_flags="--addr --port --latency --error-rate --cors-origin ${common_flags}"
    local import_flags="--dry-run ${common_flags}"
    local export_flags="--output --base-url ${common_flags}"

    local log_levels="debug info warn error"
    local list_formats="text json"
    local shells="bash zsh fish"

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
        return
    fi

    local command="${words[1]}"

    # Complete flag values
    case "${prev}" in
        --output)
            case "${command}" in
                list)
                    COMPREPLY=($(compgen -W "${list_formats}" -- "${cur}"))
                    return
                    ;;
                *)
                    _filedir
                    return
                    ;;
            esac
            ;;
        --log-level)
            COMPREPLY=($(compgen -W "${log_levels}" -- "${cur}"))
            return
            ;;
        --config)
            _filedir yaml
            return
            ;;
        --data-path)
            _filedir -d
            return
            ;;
        --bucket|--proxy|--match|--search|--addr|--port|--latency|--error-rate|--cors-origin|--base-url)
            # These take user-provided values, no completion
            return
            ;;
    esac

    case "${command}" in
        add)
            if [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${add_flags}" -- "${cur}"))
            else
                _filedir
            fi
            ;;
        list|ls)
            COMPREPLY=($(compgen -W "${list_flags}" -- "${cur}"))
            ;;
        show)
            COMPREPLY=($(compgen -W "${show_flags}" -- "${cur}"))
            ;;
        remove|rm)
            COMPREPLY=($(compgen -W "${remove_flags}" -- "${cur}"))
            ;;
        flush)
            COMPREPLY=($(compgen -W "${flush_flags}" -- "${cur}"))
            ;;
        serve)
            COMPREPLY=($(compgen -W "${serve_flags}" -- "${cur}"))
            ;;
        import)
            if [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${import_flags}" -- "${cur}"))
            else
                COMPREPLY=($(compgen -f -X '!*.har' -- "${cur}"))
                _filedir -d
            fi
            ;;
        export)
            COMPREPLY=($(compgen -W "${export_flags}" -- "${cur}"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "${shells}" -- "${cur}"))
            ;;
    esac
}

complete -F _jsonstash jsonstash
`
}

func generateZshCompletion() string {
	return `#compdef jsonstash

# zsh completion for jsonstash

_jsonstash() {
    local -a commands
    commands=(
        'add:Capture a URL (or a file with --file) under a local endpoint path'
        'list:List stored endpoint paths'
        'show:Print the stored headers and body for an endpoint path'
        'remove:Delete the record for an endpoint path'
        'flush:Delete every record in the bucket'
        'serve:Start a mock HTTP server replaying every stored record'
        'import:Store the GET responses found in a HAR file'
        'export:Write every stored record as a HAR file'
        'completion:Generate shell completion scripts'
        'version:Print version information'
        'help:Show help message'
    )

    local -a common
    common=(
        '--config[Config file path]:config file:_files -g "*.yaml"'
        '--data-path[Directory holding the database]:directory:_files -/'
        '--bucket[Bucket name]:bucket:'
        '--log-level[Log level]:level:(debug info warn error)'
    )

    _arguments -C \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe -t commands 'jsonstash commands' commands
            ;;
        args)
            case $words[1] in
                add)
                    _arguments $common \
                        '--file[Treat the source as a local file]' \
                        '--proxy[Proxy URL for the capture]:proxy url:' \
                        '1:source:_files' \
                        '2:endpoint path:'
                    ;;
                list|ls)
                    _arguments $common \
                        '--match[Only list paths matching a glob]:pattern:' \
                        '--search[Fuzzy-filter paths]:query:' \
                        '--output[Output format]:format:(text json)'
                    ;;
                show)
                    _arguments $common \
                        '--raw[Print the stored record exactly as persisted]' \
                        '--no-color[Disable syntax highlighting]' \
                        '1:endpoint path:'
                    ;;
                remove|rm)
                    _arguments $common \
                        '*:endpoint path:'
                    ;;
                flush)
                    _arguments $common \
                        '--yes[Confirm deleting every record in the bucket]'
                    ;;
                serve)
                    _arguments $common \
                        '--addr[Address to listen on]:address:' \
                        '--port[Port to listen on]:port:' \
                        '--latency[Artificial response latency]:duration:' \
                        '--error-rate[Random error rate (0.0-1.0)]:rate:' \
                        '--cors-origin[Add CORS headers allowing this origin]:origin:'
                    ;;
                import)
                    _arguments $common \
                        '--dry-run[Show what would be stored without writing]' \
                        '1:HAR file:_files -g "*.har"'
                    ;;
                export)
                    _arguments $common \
                        '--output[Output file path]:output file:_files' \
                        '--base-url[Base URL for entry URLs]:url:'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_jsonstash "$@"
`
}

func generateFishCompletion() string {
	return `# fish completion for jsonstash

# Disable file completions by default
complete -c jsonstash -f

# Subcommands
complete -c jsonstash -n '__fish_use_subcommand' -a add -d 'Capture a URL (or a file with --file) under a local endpoint path'
complete -c jsonstash -n '__fish_use_subcommand' -a list -d 'List stored endpoint paths'
complete -c jsonstash -n '__fish_use_subcommand' -a show -d 'Print the stored headers and body for an endpoint path'
complete -c jsonstash -n '__fish_use_subcommand' -a remove -d 'Delete the record for an endpoint path'
complete -c jsonstash -n '__fish_use_subcommand' -a flush -d 'Delete every record in the bucket'
complete -c jsonstash -n '__fish_use_subcommand' -a serve -d 'Start a mock HTTP server replaying every stored record'
complete -c jsonstash -n '__fish_use_subcommand' -a import -d 'Store the GET responses found in a HAR file'
complete -c jsonstash -n '__fish_use_subcommand' -a export -d 'Write every stored record as a HAR file'
complete -c jsonstash -n '__fish_use_subcommand' -a completion -d 'Generate shell completion scripts'
complete -c jsonstash -n '__fish_use_subcommand' -a version -d 'Print version information'
complete -c jsonstash -n '__fish_use_subcommand' -a help -d 'Show help message'

# Common flags
complete -c jsonstash -n 'not __fish_use_subcommand' -l config -d 'Config file path' -rF
complete -c jsonstash -n 'not __fish_use_subcommand' -l data-path -d 'Directory holding the database' -rF
complete -c jsonstash -n 'not __fish_use_subcommand' -l bucket -d 'Bucket name' -r
complete -c jsonstash -n 'not __fish_use_subcommand' -l log-level -d 'Log level' -ra 'debug info warn error'

# add
complete -c jsonstash -n '__fish_seen_subcommand_from add' -l file -d 'Treat the source as a local file'
complete -c jsonstash -n '__fish_seen_subcommand_from add' -l proxy -d 'Proxy URL for the capture' -r
complete -c jsonstash -n '__fish_seen_subcommand_from add' -F

# list
complete -c jsonstash -n '__fish_seen_subcommand_from list ls' -l match -d 'Only list paths matching a glob' -r
complete -c jsonstash -n '__fish_seen_subcommand_from list ls' -l search -d 'Fuzzy-filter paths' -r
complete -c jsonstash -n '__fish_seen_subcommand_from list ls' -l output -d 'Output format' -ra 'text json'

# show
complete -c jsonstash -n '__fish_seen_subcommand_from show' -l raw -d 'Print the stored record exactly as persisted'
complete -c jsonstash -n '__fish_seen_subcommand_from show' -l no-color -d 'Disable syntax highlighting'

# flush
complete -c jsonstash -n '__fish_seen_subcommand_from flush' -l yes -d 'Confirm deleting every record in the bucket'

# serve
complete -c jsonstash -n '__fish_seen_subcommand_from serve' -l addr -d 'Address to listen on' -r
complete -c jsonstash -n '__fish_seen_subcommand_from serve' -l port -d 'Port to listen on' -r
complete -c jsonstash -n '__fish_seen_subcommand_from serve' -l latency -d 'Artificial response latency' -r
complete -c jsonstash -n '__fish_seen_subcommand_from serve' -l error-rate -d 'Random error rate (0.0-1.0)' -r
complete -c jsonstash -n '__fish_seen_subcommand_from serve' -l cors-origin -d 'Add CORS headers allowing this origin' -r

# import
complete -c jsonstash -n '__fish_seen_subcommand_from import' -l dry-run -d 'Show what would be stored without writing'
complete -c jsonstash -n '__fish_seen_subcommand_from import' -F

# export
complete -c jsonstash -n '__fish_seen_subcommand_from export' -l output -d 'Output file path' -rF
complete -c jsonstash -n '__fish_seen_subcommand_from export' -l base-url -d 'Base URL for entry URLs' -r

# completion
complete -c jsonstash -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish' -d 'Shell type'
`
}
