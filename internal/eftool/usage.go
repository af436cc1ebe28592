package eftool

// Usage is printed by the help action
const Usage = `Usage:
    eftools (options)
    -a -add <project> <name>   add a migration named <name> to <project>
    -r -remove <project>       remove the last migration of <project>
    -o --optimize <project>    optimize dbcontext (argument required)
    -b --bundle <project>      bundle dbcontext - creates efbundle (argument required, not implemented)
    -h --help                  print usage
`
