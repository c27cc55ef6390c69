// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/meta"
)

const bashCompletionScript = `# bash completion for clinicctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_clinicctl()
{
    local cur prev cmd sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "dq deptq aq stq cache export report remind task completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    sub=${COMP_WORDS[2]}
    local common="--attrs -a --color -c --no-color --filter -f --local -l --output -o --sort -s --titles -t --no-titles"
    local conn="--host -H --token --timeout --refresh -r --no-cache --metrics-file"
    local poll="--wait -w --interval -i --attempts"

    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$cmd" in
            cache)
                COMPREPLY=( $(compgen -W "clear stats health" -- "$cur") )
                return 0
                ;;
            export)
                COMPREPLY=( $(compgen -W "patient-history doctor-appointments" -- "$cur") )
                return 0
                ;;
            task)
                COMPREPLY=( $(compgen -W "status wait download history" -- "$cur") )
                return 0
                ;;
            completion)
                COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
                return 0
                ;;
        esac
    fi

    local opts="$common $conn"
    case "$cmd" in
        dq)
            opts="$opts --search --dept"
            ;;
        aq)
            opts="$opts --status"
            ;;
        stq)
            opts="$opts --role"
            ;;
        cache)
            [[ "$sub" == "clear" ]] && opts="$opts --all"
            ;;
        export)
            opts="$opts $poll --download -d --to"
            [[ "$sub" == "doctor-appointments" ]] && opts="$opts --start --end"
            ;;
        report)
            opts="$opts $poll --start --end --email -e"
            ;;
        remind)
            opts="$opts $poll --appointment"
            ;;
        task)
            case "$sub" in
                wait) opts="$opts --interval -i --attempts --parallel --download -d --to" ;;
                download) opts="$opts --to" ;;
            esac
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --role)
            COMPREPLY=( $(compgen -W "admin doctor patient" -- "$cur") )
            return 0
            ;;
        --to)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _clinicctl clinicctl
`

const zshCompletionScript = `#compdef clinicctl

_clinicctl() {
  local -a cmds
  cmds=(
    'dq:doctor query'
    'deptq:department query'
    'aq:patient appointment query'
    'stq:dashboard statistics query'
    'cache:server response cache'
    'export:start a CSV export task'
    'report:generate a report'
    'remind:send an appointment reminder'
    'task:background task status and results'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '(-H --host)'{-H,--host}'[API base URL]:url'
  '--token[bearer token]:token'
  '--timeout[per-request timeout]:duration'
  '(-r --refresh)'{-r,--refresh}'[bypass cached responses]'
  '--no-cache[never store responses]'
  '--metrics-file[metrics textfile]:file:_files'
  )

  local -a poll
  poll=(
  '(-w --wait)'{-w,--wait}'[wait for the task]'
  '(-i --interval)'{-i,--interval}'[poll interval]:duration'
  '--attempts[maximum status queries]:count'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'clinicctl commands' cmds
    return
  fi

  case $words[2] in
    dq)
      _arguments -C $common '--search[name or specialization]:text' '--dept[department id]:id' '::doctorID'
      ;;
    deptq)
      _arguments -C $common
      ;;
    aq)
      _arguments -C $common '--status[appointment status]:status:(booked completed cancelled)'
      ;;
    stq)
      _arguments -C $common '--role[dashboard role]:role:(admin doctor patient)'
      ;;
    cache)
      if (( CURRENT == 3 )); then
        _values 'cache command' clear stats health
      else
        _arguments -C $common '--all[clear every entry]' '::pattern'
      fi
      ;;
    export)
      if (( CURRENT == 3 )); then
        _values 'export kind' patient-history doctor-appointments
      else
        _arguments -C $common $poll \
          '(-d --download)'{-d,--download}'[download the export]' \
          '--to[destination]:dest:_files' \
          '--start[first day]:date' \
          '--end[last day]:date'
      fi
      ;;
    report)
      _arguments -C $common $poll '--start[first day]:date' '--end[last day]:date' '(-e --email)'{-e,--email}'[mail to]:address'
      ;;
    remind)
      _arguments -C $common $poll '--appointment[appointment id]:id'
      ;;
    task)
      if (( CURRENT == 3 )); then
        _values 'task command' status wait download history
      else
        _arguments -C $common $poll '--parallel[tasks at once]:count' '(-d --download)'{-d,--download}'[download]' '--to[destination]:dest:_files' '*::taskID'
      fi
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _clinicctl clinicctl
`

var completionScripts = map[string]string{
	"bash": bashCompletionScript,
	"zsh":  zshCompletionScript,
}

// CompletionCommandAction prints the script for the named shell, or for the
// login shell in $SHELL when none is named.
func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		shell = filepath.Base(os.Getenv("SHELL"))
	}

	script, ok := completionScripts[shell]
	if !ok {
		return &actionError{msg: fmt.Sprintf("no completion for %q, use bash or zsh", shell)}
	}
	_, err := fmt.Fprint(stdout, script)
	return err
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "clinicctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
