package regress

var OrderByClause = orderByClause
